package main

import "github.com/frahmantamala/recruitment/cmd"

func main() {
	cmd.Execute()
}
