package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxLogoBytes = 5 << 20

// Image is an encoded raster image and its gofpdf type ("JPG", "PNG", "GIF").
type Image struct {
	Data []byte
	Type string
}

// LogoSource supplies the branding logo.
type LogoSource interface {
	Logo(ctx context.Context) (Image, error)
}

// httpLogoSource downloads the logo and keeps successful fetches in an
// expiring LRU so one download serves many reports.
type httpLogoSource struct {
	url    string
	client *http.Client
	cache  *expirable.LRU[string, Image]
}

// NewHTTPLogoSource returns a LogoSource for url. A nil client uses a 10s
// timeout client.
func NewHTTPLogoSource(url string, client *http.Client, ttl time.Duration) LogoSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpLogoSource{
		url:    url,
		client: client,
		cache:  expirable.NewLRU[string, Image](4, nil, ttl),
	}
}

func (s *httpLogoSource) Logo(ctx context.Context) (Image, error) {
	if s.url == "" {
		return Image{}, errors.New("no logo URL configured")
	}
	if img, ok := s.cache.Get(s.url); ok {
		return img, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("logo request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("fetch logo: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return Image{}, fmt.Errorf("read logo: %w", err)
	}
	kind, err := imageType(data)
	if err != nil {
		return Image{}, err
	}

	img := Image{Data: data, Type: kind}
	s.cache.Add(s.url, img)
	return img, nil
}

func imageType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", errors.New("logo is not a JPEG, PNG or GIF image")
	}
}
