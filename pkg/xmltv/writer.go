package xmltv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrChannelAfterProgramme is returned when a channel is written after the
// first programme; the XMLTV format lists all channels first.
var ErrChannelAfterProgramme = errors.New("channels must be written before programmes")

// Writer streams a guide document.
type Writer struct {
	w         io.Writer
	enc       *xml.Encoder
	generator string

	started    bool
	programmes bool
}

// NewWriter creates a writer whose document names generator in its header.
func NewWriter(w io.Writer, generator string) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Writer{w: w, enc: enc, generator: generator}
}

func (w *Writer) start() error {
	if w.started {
		return nil
	}
	w.started = true

	if _, err := io.WriteString(w.w, xml.Header); err != nil {
		return fmt.Errorf("writing XML declaration: %w", err)
	}
	tv := xml.StartElement{Name: xml.Name{Local: "tv"}}
	if w.generator != "" {
		tv.Attr = []xml.Attr{{Name: xml.Name{Local: "generator-info-name"}, Value: w.generator}}
	}
	if err := w.enc.EncodeToken(tv); err != nil {
		return fmt.Errorf("writing tv element: %w", err)
	}
	return nil
}

// WriteChannel writes a channel definition.
func (w *Writer) WriteChannel(ch *Channel) error {
	if w.programmes {
		return ErrChannelAfterProgramme
	}
	if err := w.start(); err != nil {
		return err
	}
	if err := w.enc.Encode(channelXML(ch)); err != nil {
		return fmt.Errorf("writing channel %q: %w", ch.ID, err)
	}
	return nil
}

// WriteProgramme writes a programme.
func (w *Writer) WriteProgramme(p *Programme) error {
	if err := w.start(); err != nil {
		return err
	}
	w.programmes = true
	if err := w.enc.Encode(programmeXML(p)); err != nil {
		return fmt.Errorf("writing programme on %q: %w", p.Channel, err)
	}
	return nil
}

// Close ends the document. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.start(); err != nil {
		return err
	}
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "tv"}}); err != nil {
		return fmt.Errorf("closing tv element: %w", err)
	}
	if err := w.enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, "\n")
	return err
}
