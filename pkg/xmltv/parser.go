package xmltv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Parser streams a guide to callbacks. A callback that returns an error
// stops the parse and the error is returned wrapped.
type Parser struct {
	// OnChannel is called for each channel definition.
	OnChannel func(channel *Channel) error

	// OnProgramme is called for each programme.
	OnProgramme func(programme *Programme) error

	// OnError receives malformed elements, which are skipped.
	OnError func(err error)
}

// Parse reads a guide from r, decompressing it when needed.
func (p *Parser) Parse(ctx context.Context, r io.Reader) error {
	rc, _, err := NewReader(r)
	if err != nil {
		return err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading XML token: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "channel":
			if p.OnChannel == nil {
				if err := decoder.Skip(); err != nil {
					return fmt.Errorf("skipping channel: %w", err)
				}
				continue
			}
			var x xmlChannel
			if err := decoder.DecodeElement(&x, &start); err != nil {
				return fmt.Errorf("decoding channel: %w", err)
			}
			if x.ID == "" {
				p.handleError(errors.New("channel without id"))
				continue
			}
			if err := p.OnChannel(x.channel()); err != nil {
				return fmt.Errorf("channel callback: %w", err)
			}

		case "programme":
			if p.OnProgramme == nil {
				if err := decoder.Skip(); err != nil {
					return fmt.Errorf("skipping programme: %w", err)
				}
				continue
			}
			var x xmlProgramme
			if err := decoder.DecodeElement(&x, &start); err != nil {
				return fmt.Errorf("decoding programme: %w", err)
			}
			prog, err := x.programme()
			if err != nil {
				p.handleError(err)
				continue
			}
			if err := p.OnProgramme(prog); err != nil {
				return fmt.Errorf("programme callback: %w", err)
			}
		}
	}
}

func (p *Parser) handleError(err error) {
	if p.OnError != nil {
		p.OnError(err)
	}
}

// ParseAll reads a whole guide into memory.
func ParseAll(ctx context.Context, r io.Reader) ([]*Channel, []*Programme, error) {
	var (
		channels   []*Channel
		programmes []*Programme
	)
	p := &Parser{
		OnChannel: func(ch *Channel) error {
			channels = append(channels, ch)
			return nil
		},
		OnProgramme: func(prog *Programme) error {
			programmes = append(programmes, prog)
			return nil
		},
	}
	if err := p.Parse(ctx, r); err != nil {
		return nil, nil, err
	}
	return channels, programmes, nil
}
