package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var (
		mode       string
		token      string
		remember   bool
		launch     bool
		username   string
		password   string
		otp        string
		totpSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in, answering each prompt of the login server",
		Long: `login runs a login flow to completion. Answers given as flags are used
for the first matching prompt; anything else is asked on the terminal.

Without --mode a flow for --token is an auto-login and a flow without a
token logs in a new account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = "new"
				if token != "" {
					mode = "auto"
				}
			}

			req := map[string]any{"mode": mode, "token": token, "remember": remember}
			var flow Flow
			if err := client.Post("/api/v1/login", req, &flow); err != nil {
				return err
			}

			p := &prompter{
				in:  bufio.NewReader(cmd.InOrStdin()),
				out: cmd.ErrOrStderr(),
				answers: map[string]string{
					"username":    username,
					"password":    password,
					"otp":         otp,
					"totp_secret": totpSecret,
				},
			}
			flow, err := runFlow(flow, p)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if !launch {
				out.Print(flow)
				return nil
			}

			var result LaunchResult
			if err := client.Post(flowPath(flow.ID, "/launch"), nil, &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Login mode: new, saved, auto")
	cmd.Flags().StringVar(&token, "token", "", "Saved player token")
	cmd.Flags().BoolVar(&remember, "remember", false, "Store the password entered for later auto-login")
	cmd.Flags().BoolVar(&launch, "launch", false, "Start the game once logged in")
	cmd.Flags().StringVar(&username, "username", "", "Square Enix ID")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&otp, "otp", "", "One-time password")
	cmd.Flags().StringVar(&totpSecret, "totp-secret", "", "Base32 TOTP secret to generate the one-time password from")

	return cmd
}

func flowPath(id string, rest string) string {
	return "/api/v1/login/" + url.PathEscape(id) + rest
}

// runFlow answers prompts until the flow completes or cannot continue
func runFlow(flow Flow, p *prompter) (Flow, error) {
	step := flow.Step
	for {
		var body map[string]string

		switch step.Kind {
		case "login_completed":
			return flow, nil
		case "display_error":
			p.say(step.Message)
			if step.Continue == nil || step.Continue.Kind == "restart" {
				return flow, fmt.Errorf("login failed: %s", step.Message)
			}
			step = *step.Continue
			continue
		case "restart":
			return flow, errors.New("login failed: the flow must be started again")
		case "ask_username_password":
			user, err := p.ask("username", "Square Enix ID", step.Username)
			if err != nil {
				return flow, err
			}
			pass, err := p.ask("password", "Password", "")
			if err != nil {
				return flow, err
			}
			body = map[string]string{"kind": "username_password", "username": user, "password": pass}
		case "ask_password":
			pass, err := p.ask("password", "Password for "+step.Username, "")
			if err != nil {
				return flow, err
			}
			body = map[string]string{"kind": "password", "password": pass}
		case "ask_otp":
			code, err := p.otp()
			if err != nil {
				return flow, err
			}
			body = map[string]string{"kind": "otp", "otp": code}
		case "ask_easy_play":
			body = map[string]string{"kind": "easy_play"}
		default:
			return flow, fmt.Errorf("unexpected login step %q", step.Kind)
		}

		if err := client.Post(flowPath(flow.ID, "/step"), body, &flow); err != nil {
			return flow, err
		}
		step = flow.Step
	}
}

// prompter answers from flags once each, then from the terminal
type prompter struct {
	in      *bufio.Reader
	out     io.Writer
	answers map[string]string
}

func (p *prompter) say(msg string) {
	_, _ = fmt.Fprintln(p.out, msg)
}

func (p *prompter) take(key string) (string, bool) {
	v := p.answers[key]
	if v == "" {
		return "", false
	}
	delete(p.answers, key)
	return v, true
}

func (p *prompter) ask(key, label, def string) (string, error) {
	if v, ok := p.take(key); ok {
		return v, nil
	}

	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("%s: no input", strings.ToLower(label))
	}
	line = strings.TrimSpace(line)
	if line == "" {
		line = def
	}
	return line, nil
}

func (p *prompter) otp() (string, error) {
	if secret, ok := p.take("totp_secret"); ok {
		code, err := totp.GenerateCode(secret, time.Now())
		if err != nil {
			return "", fmt.Errorf("generate one-time password: %w", err)
		}
		return code, nil
	}
	return p.ask("otp", "One-time password", "")
}
