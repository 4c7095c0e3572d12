package effects

import (
	"net/http"
	"time"
)

// Options holds the cookie attributes of a recorded write.
type Options struct {
	Path        string
	Domain      string
	Expires     time.Time
	MaxAge      int
	Secure      bool
	HttpOnly    bool
	SameSite    http.SameSite
	Partitioned bool
}

// Op is a single recorded cookie write.
type Op struct {
	Name    string
	Value   string
	Quoted  bool
	Options Options
}

// FromCookie converts c into an Op.
func FromCookie(c *http.Cookie) Op {
	return Op{
		Name:   c.Name,
		Value:  c.Value,
		Quoted: c.Quoted,
		Options: Options{
			Path:        c.Path,
			Domain:      c.Domain,
			Expires:     c.Expires,
			MaxAge:      c.MaxAge,
			Secure:      c.Secure,
			HttpOnly:    c.HttpOnly,
			SameSite:    c.SameSite,
			Partitioned: c.Partitioned,
		},
	}
}

// Cookie returns a fresh *http.Cookie for the op.
func (o Op) Cookie() *http.Cookie {
	return &http.Cookie{
		Name:        o.Name,
		Value:       o.Value,
		Quoted:      o.Quoted,
		Path:        o.Options.Path,
		Domain:      o.Options.Domain,
		Expires:     o.Options.Expires,
		MaxAge:      o.Options.MaxAge,
		Secure:      o.Options.Secure,
		HttpOnly:    o.Options.HttpOnly,
		SameSite:    o.Options.SameSite,
		Partitioned: o.Options.Partitioned,
	}
}
