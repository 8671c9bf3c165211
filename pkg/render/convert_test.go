package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestConvertSVGPassthrough(t *testing.T) {
	svg := []byte("<svg/>")
	for _, f := range []string{"", "svg"} {
		got, err := Convert(context.Background(), svg, f)
		if err != nil || !bytes.Equal(got, svg) {
			t.Errorf("Convert(%q) = %q, %v", f, got, err)
		}
	}
}

func TestConvertUnknownFormat(t *testing.T) {
	if _, err := Convert(context.Background(), nil, "gif"); err == nil {
		t.Error("Convert(gif) succeeded")
	}
}

func TestConvertWithoutConverter(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err == nil {
		t.Skip("rsvg-convert installed")
	}
	_, err := Convert(context.Background(), []byte("<svg/>"), "pdf")
	if !errors.Is(err, ErrNoConverter) {
		t.Errorf("err = %v, want ErrNoConverter", err)
	}
}
