package webclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form is an HTML form ready to be submitted
type Form struct {
	Method string
	Action string
	Fields map[string]string
}

// ParseForm reads a <form> element. The action is resolved against base and
// only inputs with a name are kept. Entities in attribute values are
// already decoded by the HTML parser.
func ParseForm(sel *goquery.Selection, base *url.URL) (*Form, error) {
	if sel.Length() == 0 {
		return nil, fmt.Errorf("no form element")
	}
	sel = sel.First()

	rawAction, _ := sel.Attr("action")
	action, err := url.Parse(strings.TrimSpace(rawAction))
	if err != nil {
		return nil, fmt.Errorf("form action %q: %w", rawAction, err)
	}
	if base != nil {
		action = base.ResolveReference(action)
	}

	method, _ := sel.Attr("method")
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	fields := make(map[string]string)
	sel.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		if name == "" {
			return
		}
		value, _ := input.Attr("value")
		fields[name] = value
	})

	return &Form{Method: method, Action: action.String(), Fields: fields}, nil
}

// Clone returns a copy whose fields can be changed independently
func (f *Form) Clone() *Form {
	fields := make(map[string]string, len(f.Fields))
	for k, v := range f.Fields {
		fields[k] = v
	}
	return &Form{Method: f.Method, Action: f.Action, Fields: fields}
}

// Has reports whether the form carries an input with the given name
func (f *Form) Has(name string) bool {
	_, ok := f.Fields[name]
	return ok
}

// Values encodes the fields for submission
func (f *Form) Values() url.Values {
	v := make(url.Values, len(f.Fields))
	for k, val := range f.Fields {
		v.Set(k, val)
	}
	return v
}
