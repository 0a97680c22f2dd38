package logger

import (
	"net/http"
	"testing"
)

func TestMaskAuthorization(t *testing.T) {
	cases := map[string]string{
		"Bearer abcdefgh": "Bearer ****efgh",
		"tok":             "***",
		"":                "",
	}
	for in, want := range cases {
		if got := MaskAuthorization(in); got != want {
			t.Errorf("MaskAuthorization(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskCookie(t *testing.T) {
	got := MaskCookie("session=42.signature; theme=dark")
	if got != "session=********ture; theme=****" {
		t.Errorf("unexpected %q", got)
	}
}

func TestMaskHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secrettoken")
	h.Set("Cookie", "session=1.abcdef")
	h.Set("Accept", "application/json")
	got := MaskHeaders(h)
	if got["Authorization"] != "Bearer *******oken" {
		t.Errorf("authorization: %q", got["Authorization"])
	}
	if got["Cookie"] != "session=****cdef" {
		t.Errorf("cookie: %q", got["Cookie"])
	}
	if got["Accept"] != "application/json" {
		t.Errorf("accept: %q", got["Accept"])
	}
}
