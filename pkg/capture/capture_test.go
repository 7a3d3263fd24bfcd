package capture

import (
	"errors"
	"testing"
)

func TestClampArea(t *testing.T) {
	cases := []struct {
		name string
		in   Area
		want Area
	}{
		{"inside", Area{10, 20, 100, 50}, Area{10, 20, 100, 50}},
		{"negative origin", Area{-5, -7, 100, 50}, Area{0, 0, 100, 50}},
		{"overflow right", Area{1900, 0, 100, 50}, Area{1900, 0, 20, 50}},
		{"overflow bottom", Area{0, 1000, 10, 500}, Area{0, 1000, 10, 80}},
		{"full screen", Area{0, 0, 5000, 5000}, Area{0, 0, 1920, 1080}},
	}
	for _, c := range cases {
		got, err := ClampArea(c.in, 1920, 1080)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %+v want %+v", c.name, got, c.want)
		}
	}
}

func TestClampAreaInvalid(t *testing.T) {
	for _, a := range []Area{
		{0, 0, 0, 10},
		{0, 0, 10, -3},
		{2000, 0, 10, 10},
		{0, 1080, 10, 10},
	} {
		if _, err := ClampArea(a, 1920, 1080); !errors.Is(err, ErrInvalidArea) {
			t.Fatalf("area %+v: expected ErrInvalidArea got %v", a, err)
		}
	}
}

func TestAreaRect(t *testing.T) {
	r := Area{X: 3, Y: 4, Width: 10, Height: 20}.Rect()
	if r.Min.X != 3 || r.Min.Y != 4 || r.Dx() != 10 || r.Dy() != 20 {
		t.Fatalf("unexpected rect %v", r)
	}
}
