package user

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrInvalidTaxID      = errors.New("invalid company tax id")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidPostalCode = errors.New("invalid postal code")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string {
	return e.value
}

func (e Email) String() string {
	return e.value
}

// Phone is stored in E.164 form (+420XXXXXXXXX).
type Phone struct {
	value string
}

func NewPhone(s string) (Phone, error) {
	d := digitsOnly(s)
	switch {
	case strings.HasPrefix(d, "420") && len(d) == 12:
		return Phone{value: "+" + d}, nil
	case len(d) == 9:
		return Phone{value: "+420" + d}, nil
	default:
		return Phone{}, ErrInvalidPhone
	}
}

func (p Phone) String() string {
	return p.value
}

// TaxID is a Czech company identification number (IČO): 8 digits with a
// mod-11 check digit.
type TaxID struct {
	value string
}

func NewTaxID(s string) (TaxID, error) {
	d := digitsOnly(s)
	if len(d) != 8 {
		return TaxID{}, ErrInvalidTaxID
	}

	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(d[i]-'0') * (8 - i)
	}
	var check int
	switch r := sum % 11; r {
	case 0:
		check = 1
	case 1:
		check = 0
	default:
		check = 11 - r
	}
	if int(d[7]-'0') != check {
		return TaxID{}, ErrInvalidTaxID
	}
	return TaxID{value: d}, nil
}

// NewOptionalTaxID returns nil for an empty input.
func NewOptionalTaxID(s *string) (*TaxID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := NewTaxID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (t TaxID) String() string {
	return t.value
}

type Name struct {
	first string
	last  string
}

func NewName(first, last string) (Name, error) {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if !validNamePart(first) || !validNamePart(last) {
		return Name{}, ErrInvalidName
	}
	return Name{first: first, last: last}, nil
}

func (n Name) First() string { return n.first }
func (n Name) Last() string  { return n.last }
func (n Name) Full() string  { return n.first + " " + n.last }

type Address struct {
	street     string
	city       string
	postalCode string
}

func NewAddress(street, city, postalCode string) (Address, error) {
	street, city = strings.TrimSpace(street), strings.TrimSpace(city)
	if len([]rune(street)) < 3 || len([]rune(city)) < 2 {
		return Address{}, ErrInvalidAddress
	}
	pc := digitsOnly(postalCode)
	if len(pc) != 5 || pc[0] == '0' {
		return Address{}, ErrInvalidPostalCode
	}
	return Address{street: street, city: city, postalCode: pc}, nil
}

func (a Address) Street() string     { return a.street }
func (a Address) City() string       { return a.city }
func (a Address) PostalCode() string { return a.postalCode }

func validNamePart(s string) bool {
	n := len([]rune(s))
	if n < 2 || n > 50 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
