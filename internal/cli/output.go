package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case Flow:
		o.printFlow(v)
	case LaunchResult:
		o.printf("Game started (pid %d)\n", v.Pid)
	case MaintenanceResult:
		o.printMaintenance(v)
	case BannerList:
		o.printBanners(v)
	case FileName:
		o.printf("%s\n", v.Name)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// Player response type (matches API)
type Player struct {
	Number      int    `json:"number"`
	Token       string `json:"token"`
	Name        string `json:"name,omitempty"`
	HasPassword bool   `json:"has_password"`
	HasTOTP     bool   `json:"has_totp"`
	Selected    bool   `json:"selected"`
}

// Trial response type
type Trial struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Code  string `json:"code"`
}

// PlayerList response type
type PlayerList struct {
	Players []Player `json:"players"`
	Trial   *Trial   `json:"trial,omitempty"`
}

// Step response type
type Step struct {
	Kind      string `json:"kind"`
	Username  string `json:"username,omitempty"`
	Otp       string `json:"otp,omitempty"`
	Message   string `json:"message,omitempty"`
	Continue  *Step  `json:"continue,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Token     string `json:"token,omitempty"`
}

// Flow response type
type Flow struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	Step         Step   `json:"step"`
	PlayerNumber int    `json:"player_number,omitempty"`
	ExpiresAt    string `json:"expires_at"`
}

// LaunchResult response type
type LaunchResult struct {
	Pid int `json:"pid"`
}

// MaintenanceResult response type
type MaintenanceResult struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// Banner response type
type Banner struct {
	Alt  string `json:"alt"`
	Href string `json:"href"`
	Src  string `json:"src"`
}

// BannerList response type
type BannerList struct {
	Banners []Banner `json:"banners"`
}

// FileName is the result of a local file name conversion
type FileName struct {
	Name string `json:"name"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	name := p.Name
	if name == "" {
		name = "(unknown)"
	}
	marker := " "
	if p.Selected {
		marker = "*"
	}
	secrets := ""
	if p.HasPassword {
		secrets += " [password]"
	}
	if p.HasTOTP {
		secrets += " [totp]"
	}
	o.printf("%s %d  %-20s %s%s\n", marker, p.Number, name, p.Token, secrets)
}

func (o *Output) printPlayerList(l PlayerList) {
	if len(l.Players) == 0 {
		o.printf("No saved players\n")
	}
	for _, p := range l.Players {
		o.printPlayer(p)
	}
	if l.Trial != nil {
		o.printf("Trial: %s (code %s)\n", l.Trial.ID, l.Trial.Code)
	}
}

func (o *Output) printFlow(f Flow) {
	o.printf("Flow: %s (%s)\n", f.ID, f.Mode)
	o.printf("Step: %s\n", f.Step.Kind)
	if f.Step.Message != "" {
		o.printf("Message: %s\n", f.Step.Message)
	}
	if f.PlayerNumber > 0 {
		o.printf("Player: %d\n", f.PlayerNumber)
	}
}

func (o *Output) printMaintenance(m MaintenanceResult) {
	o.printf("Server: %s\n", m.State)
	if m.Message != "" {
		o.printf("%s\n", m.Message)
	}
}

func (o *Output) printBanners(b BannerList) {
	if len(b.Banners) == 0 {
		o.printf("No banners\n")
	}
	for _, banner := range b.Banners {
		o.printf("%s\n  %s\n", banner.Alt, banner.Href)
	}
}
