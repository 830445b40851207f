package rest

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
	expirationRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{4}$`)
)

const minPasswordLength = 8

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// problems collects field messages in the order they were found.
type problems []string

func (p *problems) notEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		*p = append(*p, field+" should not be empty")
	}
}

func (p *problems) email(field, value string) {
	if strings.TrimSpace(value) == "" {
		*p = append(*p, field+" should not be empty")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		*p = append(*p, field+" must be an email")
	}
}

func (p *problems) check(ok bool, msg string) {
	if !ok {
		*p = append(*p, msg)
	}
}

func validateSignUp(r signUpRequest) []string {
	var p problems
	p.email("email", r.Email)
	p.notEmpty("name", r.Name)
	p.notEmpty("password", r.Password)
	if r.Password != "" {
		p.check(isStrongPassword(r.Password), "password is not strong enough")
	}
	return p
}

func validateSignIn(r signInRequest) []string {
	var p problems
	p.email("email", r.Email)
	p.notEmpty("password", r.Password)
	return p
}

func validatePassword(r passwordRequest) []string {
	var p problems
	p.notEmpty("password", r.Password)
	return p
}

func validateCredential(in models.CredentialInput) []string {
	var p problems
	p.notEmpty("title", in.Title)
	p.check(isHTTPURL(in.URL), "url must be a URL address")
	p.notEmpty("username", in.Username)
	p.notEmpty("password", in.Password)
	return p
}

func validateCard(in models.CardInput) []string {
	var p problems
	p.notEmpty("title", in.Title)
	p.check(cardNumberRe.MatchString(in.Number), "card number must have 16 digits!")
	p.notEmpty("owner", in.Owner)
	p.check(cvvRe.MatchString(in.CVV), "card cvv number must have 3 digits!")
	p.check(expirationRe.MatchString(in.Expiration), `expiration date must have format "MM/YYYY"!`)
	p.notEmpty("password", in.Password)

	typesOK := len(in.Types) > 0
	for _, id := range in.Types {
		if id <= 0 {
			typesOK = false
		}
	}
	p.check(typesOK, "type must be a list of numbers!")
	return p
}

func validateNote(in models.NoteInput) []string {
	var p problems
	p.notEmpty("title", in.Title)
	p.notEmpty("text", in.Text)
	return p
}

// isStrongPassword requires at least eight characters with a lowercase
// letter, an uppercase letter, a digit and a symbol.
func isStrongPassword(s string) bool {
	if len([]rune(s)) < minPasswordLength {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
