package login

import (
	"github.com/mcoot/galapa/internal/webclient"
)

const formSelector = `form[name="mainForm"]`

// Response is what a login page tells us, read from its <x-sqexauth>
// element and its main form
type Response struct {
	ErrorMessage string
	SessionID    string
	Token        string
	Lang         string
	Region       string
	UTC          string
	Mode         string
	Form         *webclient.Form
}

// ParseResponse extracts the login outcome from a fetched page
func ParseResponse(page *webclient.Page) *Response {
	resp := &Response{Form: page.Form(formSelector)}

	auth := page.Doc.Find("x-sqexauth").First()
	if auth.Length() == 0 {
		return resp
	}
	resp.ErrorMessage = auth.AttrOr("message", "")
	resp.SessionID = auth.AttrOr("sid", "")
	resp.Token = auth.AttrOr("id", "")
	resp.Lang = auth.AttrOr("lang", "")
	resp.Region = auth.AttrOr("region", "")
	resp.UTC = auth.AttrOr("utc", "")
	resp.Mode = auth.AttrOr("mode", "")
	return resp
}
