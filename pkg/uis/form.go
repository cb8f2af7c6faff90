package uis

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/pquerna/otp/totp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoLoginForm is returned when a page holds no form with a password input.
var ErrNoLoginForm = errors.New("uis: no login form on page")

var (
	defaultUsernameFields = []string{"username", "j_username", "loginName", "user", "account"}
	defaultOTPFields      = []string{"otpCode", "dynamicCode", "totpCode", "otp", "code"}
)

// FormBuilder completes a CAS style login form. Hidden inputs (lt, execution,
// _eventId and the like) are copied as served.
type FormBuilder struct {
	// UsernameFields are tried in order; the first text input is used when
	// none match.
	UsernameFields []string

	// OTPFields name one-time code inputs filled from Credentials.TOTPSecret.
	OTPFields []string

	// Now is the time source for one-time codes. Defaults to time.Now.
	Now func() time.Time
}

// NewFormBuilder returns a FormBuilder with the field names used by common
// CAS deployments.
func NewFormBuilder() *FormBuilder {
	return &FormBuilder{
		UsernameFields: defaultUsernameFields,
		OTPFields:      defaultOTPFields,
		Now:            time.Now,
	}
}

type formInput struct {
	name  string
	typ   string
	value string
	on    bool // checked, for checkboxes and radios
}

type loginForm struct {
	action string
	method string
	inputs []formInput
}

func (f loginForm) password() (string, bool) {
	for _, in := range f.inputs {
		if in.typ == "password" && in.name != "" {
			return in.name, true
		}
	}
	return "", false
}

// Build parses page, served from pageURL, and returns the request that
// submits creds through its login form.
func (b *FormBuilder) Build(pageURL *url.URL, page []byte, creds authgate.Credentials) (authgate.Request, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return authgate.Request{}, fmt.Errorf("failed to parse login page: %w", err)
	}

	form, ok := findLoginForm(doc)
	if !ok {
		return authgate.Request{}, ErrNoLoginForm
	}
	passwordField, _ := form.password()

	values := url.Values{}
	for _, in := range form.inputs {
		if in.name == "" {
			continue
		}
		switch in.typ {
		case "submit", "button", "image", "reset", "file":
			continue
		case "checkbox", "radio":
			if !in.on {
				continue
			}
		}
		values.Add(in.name, in.value)
	}

	values.Set(b.usernameField(form), creds.Username)
	values.Set(passwordField, creds.Password)

	if otpField := b.otpField(form); otpField != "" && creds.TOTPSecret != "" {
		code, err := totp.GenerateCode(creds.TOTPSecret, b.clock())
		if err != nil {
			return authgate.Request{}, fmt.Errorf("failed to generate one-time code: %w", err)
		}
		values.Set(otpField, code)
	}

	target := pageURL
	if form.action != "" {
		action, err := url.Parse(form.action)
		if err != nil {
			return authgate.Request{}, fmt.Errorf("invalid form action %q: %w", form.action, err)
		}
		target = pageURL.ResolveReference(action)
	}

	method := http.MethodPost
	if strings.EqualFold(form.method, http.MethodGet) {
		method = http.MethodGet
	}

	req := authgate.Request{URL: target, Method: method, Header: http.Header{}}
	if method == http.MethodGet {
		u := *target
		u.RawQuery = values.Encode()
		req.URL = &u
	} else {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Body = []byte(values.Encode())
	}
	req.Header.Set("Referer", pageURL.String())
	return req, nil
}

func (b *FormBuilder) usernameField(form loginForm) string {
	for _, name := range b.UsernameFields {
		if slices.ContainsFunc(form.inputs, func(in formInput) bool { return in.name == name }) {
			return name
		}
	}
	for _, in := range form.inputs {
		if in.name != "" && (in.typ == "text" || in.typ == "email" || in.typ == "tel") {
			return in.name
		}
	}
	return "username"
}

func (b *FormBuilder) otpField(form loginForm) string {
	for _, name := range b.OTPFields {
		if slices.ContainsFunc(form.inputs, func(in formInput) bool { return in.name == name }) {
			return name
		}
	}
	return ""
}

func (b *FormBuilder) clock() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// findLoginForm returns the first form in document order that contains a
// named password input.
func findLoginForm(doc *html.Node) (loginForm, bool) {
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.Form {
			continue
		}
		form := loginForm{action: attr(n, "action"), method: attr(n, "method")}
		for c := range n.Descendants() {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Input:
				typ := strings.ToLower(attr(c, "type"))
				if typ == "" {
					typ = "text"
				}
				_, checked := attrOK(c, "checked")
				form.inputs = append(form.inputs, formInput{
					name:  attr(c, "name"),
					typ:   typ,
					value: attr(c, "value"),
					on:    checked,
				})
			case atom.Textarea:
				form.inputs = append(form.inputs, formInput{name: attr(c, "name"), typ: "textarea", value: text(c)})
			}
		}
		if _, ok := form.password(); ok {
			return form, true
		}
	}
	return loginForm{}, false
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func text(n *html.Node) string {
	var sb strings.Builder
	for c := range n.Descendants() {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
