package mail_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/mail"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeSMTP accepts one session and records the DATA section.
type fakeSMTP struct {
	listener net.Listener
	mu       sync.Mutex
	commands []string
	data     strings.Builder
	done     chan struct{}
}

func startFakeSMTP() *fakeSMTP {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	s := &fakeSMTP{listener: l, done: make(chan struct{})}
	go s.serve()
	return s
}

func (s *fakeSMTP) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTP) serve() {
	defer close(s.done)
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
	reply("220 localhost ESMTP")

	inData := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		s.mu.Lock()
		if inData {
			if line == "." {
				inData = false
				s.mu.Unlock()
				reply("250 OK queued")
				continue
			}
			s.data.WriteString(line + "\n")
			s.mu.Unlock()
			continue
		}
		s.commands = append(s.commands, line)
		s.mu.Unlock()

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			reply("250-localhost")
			reply("250 8BITMIME")
		case "DATA":
			inData = true
			reply("354 go ahead")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

var _ = Describe("SMTPSender", func() {
	It("delivers a plain text message", func() {
		server := startFakeSMTP()
		defer server.listener.Close()

		sender := mail.NewSMTPSender(internal.MailConfig{
			Host:     "127.0.0.1",
			Port:     server.port(),
			From:     "no-reply@recruitment.local",
			Insecure: true,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Expect(sender.Send(ctx, mail.Message{To: "ada@example.com", Subject: "Password changed", Body: "Hi Ada"})).To(Succeed())
		Eventually(server.done).Should(BeClosed())

		server.mu.Lock()
		defer server.mu.Unlock()
		Expect(server.commands).To(ContainElement(ContainSubstring("MAIL FROM:<no-reply@recruitment.local>")))
		Expect(server.commands).To(ContainElement(ContainSubstring("RCPT TO:<ada@example.com>")))
		Expect(server.data.String()).To(ContainSubstring("Subject: Password changed"))
		Expect(server.data.String()).To(ContainSubstring("Hi Ada"))
	})

	It("rejects an invalid recipient before dialing", func() {
		sender := mail.NewSMTPSender(internal.MailConfig{Host: "127.0.0.1", Port: 1, From: "no-reply@recruitment.local", Insecure: true})
		Expect(sender.Send(context.Background(), mail.Message{To: "not an address"})).To(HaveOccurred())
	})
})
