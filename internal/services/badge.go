package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

// BadgeService draws a round PNG badge for achievements unlocked without an
// uploaded image and stores it in the content store.
type BadgeService interface {
	Render(name string) (bytes.Buffer, error)
	CreateAndUpload(ctx context.Context, childID uuid.UUID, name string) (string, error)
}

type badgeService struct {
	log      *logger.Logger
	store    ContentStore
	palette  []color.NRGBA
	fontFace font.Face
	size     int
}

var badgePalette = []color.NRGBA{
	{R: 0x4F, G: 0x9D, B: 0xDE, A: 0xFF},
	{R: 0x7A, G: 0xC1, B: 0x74, A: 0xFF},
	{R: 0xF2, G: 0xA6, B: 0x3B, A: 0xFF},
	{R: 0xE5, G: 0x6B, B: 0x8C, A: 0xFF},
	{R: 0x9B, G: 0x7B, B: 0xD4, A: 0xFF},
	{R: 0x3B, G: 0xB8, B: 0xA9, A: 0xFF},
}

// NewBadgeService loads the TTF at fontPath, or the bundled Go Bold face when empty.
func NewBadgeService(log *logger.Logger, store ContentStore, fontPath string) (BadgeService, error) {
	serviceLog := log.With("service", "BadgeService")
	if store == nil {
		return nil, fmt.Errorf("badge service requires a content store")
	}
	const size = 256
	face, err := loadBadgeFontFace(fontPath, size*0.38)
	if err != nil {
		return nil, fmt.Errorf("could not load badge font: %w", err)
	}
	return &badgeService{
		log:      serviceLog,
		store:    store,
		palette:  badgePalette,
		fontFace: face,
		size:     size,
	}, nil
}

func (bs *badgeService) Render(name string) (bytes.Buffer, error) {
	size := float64(bs.size)
	dc := gg.NewContext(bs.size, bs.size)

	dc.DrawCircle(size/2, size/2, size/2)
	dc.Clip()

	dc.SetColor(bs.pickColor(name))
	dc.DrawRectangle(0, 0, size, size)
	dc.Fill()

	// Inner ring.
	dc.ResetClip()
	dc.SetRGBA(1, 1, 1, 0.85)
	dc.SetLineWidth(size * 0.04)
	dc.DrawCircle(size/2, size/2, size/2-size*0.08)
	dc.Stroke()

	dc.SetFontFace(bs.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(badgeInitials(name), size/2, size/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func (bs *badgeService) CreateAndUpload(ctx context.Context, childID uuid.UUID, name string) (string, error) {
	buf, err := bs.Render(name)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("conquistas/%s/%s.png", childID.String(), uuid.New().String())
	if err := bs.store.UploadFile(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("failed to upload badge: %w", err)
	}
	return key, nil
}

func (bs *badgeService) pickColor(name string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return bs.palette[int(h.Sum32()%uint32(len(bs.palette)))]
}

// badgeInitials takes the first letter of the first two words.
func badgeInitials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func loadBadgeFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes := gobold.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = b
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
