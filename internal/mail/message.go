package mail

import (
	"fmt"
	"time"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func WelcomeMessage(name, email string) Message {
	return Message{
		To:      email,
		Subject: "Welcome to Recruitment",
		Body: fmt.Sprintf("Hi %s,\n\nYour account has been created. You can now sign in with %s.\n",
			name, email),
	}
}

func PasswordChangedMessage(name, email string) Message {
	return Message{
		To:      email,
		Subject: "Password changed",
		Body: fmt.Sprintf("Hi %s,\n\nThe password of your account was just changed. "+
			"If this was not you, reset your password right away.\n", name),
	}
}

func ResetTokenMessage(name, email, token string, ttl time.Duration) Message {
	return Message{
		To:      email,
		Subject: "Password reset code",
		Body: fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in %s.\n",
			name, token, ttl),
	}
}
