package services

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/data/repos/testutil"
)

func TestBadgeInitials(t *testing.T) {
	cases := map[string]string{
		"Primeiro Colorir":       "PC",
		"Missão Cumprida!":       "MC",
		"Primeiro Quebra-Cabeça": "PQ",
		"estrela":                "E",
		"  !!! ":                 "?",
	}
	for in, want := range cases {
		if got := badgeInitials(in); got != want {
			t.Fatalf("badgeInitials(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestBadgeRenderAndUpload(t *testing.T) {
	store := newMemStore()
	bs, err := NewBadgeService(testutil.Logger(t), store, "")
	if err != nil {
		t.Fatalf("NewBadgeService: %v", err)
	}
	buf, err := bs.Render("Missão Cumprida!")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("size: got=%v", b)
	}

	child := uuid.New()
	key, err := bs.CreateAndUpload(context.Background(), child, "Primeiro Colorir")
	if err != nil {
		t.Fatalf("CreateAndUpload: %v", err)
	}
	if !strings.HasPrefix(key, "conquistas/"+child.String()+"/") || !strings.HasSuffix(key, ".png") || !store.has(key) {
		t.Fatalf("key: got=%q", key)
	}

	if _, err := NewBadgeService(testutil.Logger(t), nil, ""); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := NewBadgeService(testutil.Logger(t), store, "/nonexistent/font.ttf"); err == nil {
		t.Fatalf("expected error for missing font")
	}
}
