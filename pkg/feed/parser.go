package feed

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Format identifies the wire format of a feed document
type Format string

// supported feed formats
const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned when the document is not a recognizable
// RSS 2.0, Atom 1.0 or JSON Feed document
var ErrUnsupportedFormat = errors.New("unsupported feed format")

// Info holds feed-level metadata discovered while streaming the document.
// Fields fill in progressively; all metadata preceding the first entry is
// available after the first Next call.
type Info struct {
	Format      Format
	Title       string
	Description string
	Link        string
	HubURL      string // WebSub hub advertised in the document, if any
}

// ParsedEntry is one normalized entry produced by a Stream
type ParsedEntry struct {
	GUID        string
	ContentHash string
	Title       string
	Link        string
	Summary     string
	Content     string
	Author      string
	Published   time.Time
}

// Stream is a lazy, single-pass iterator over a feed document. Next returns
// io.EOF after the last entry; any other error means the document is
// malformed and already-returned entries should be treated as suspect by the
// caller deciding whether to persist. A stream is not restartable.
type Stream interface {
	Next() (*ParsedEntry, error)
	Info() Info
}

// NewStream sniffs the document format and returns a streaming parser over
// it. The reader is consumed incrementally; memory use is bounded by the
// size of a single entry, not the document.
func NewStream(r io.Reader) (Stream, error) {
	br := bufio.NewReader(r)

	// strip UTF-8 BOM if present
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xef, 0xbb, 0xbf}) {
		_, _ = br.Discard(3)
	}

	head, err := br.Peek(64)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read document head: %w", err)
	}
	switch firstByte(head) {
	case '<':
		return newXMLStream(br)
	case '{':
		return newJSONStream(br)
	}
	return nil, ErrUnsupportedFormat
}

// firstByte returns the first non-whitespace byte, or 0
func firstByte(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}

const atomNS = "http://www.w3.org/2005/Atom"

// xmlStream parses RSS 2.0 and Atom 1.0 with a token-level pull loop;
// individual items are decoded one at a time so memory stays bounded
type xmlStream struct {
	dec    *xml.Decoder
	info   Info
	isAtom bool
}

func newXMLStream(r io.Reader) (*xmlStream, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	// find the document element
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read document element: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case se.Name.Local == "rss":
			s := &xmlStream{dec: dec}
			s.info.Format = FormatRSS
			if err := s.enterChannel(); err != nil {
				return nil, err
			}
			return s, nil
		case se.Name.Local == "feed" && se.Name.Space == atomNS:
			s := &xmlStream{dec: dec, isAtom: true}
			s.info.Format = FormatAtom
			return s, nil
		default:
			return nil, fmt.Errorf("%w: document element <%s>", ErrUnsupportedFormat, se.Name.Local)
		}
	}
}

// enterChannel advances an RSS stream past <channel>
func (s *xmlStream) enterChannel() error {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return fmt.Errorf("find rss channel: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "channel" {
				return nil
			}
			if err := s.dec.Skip(); err != nil {
				return fmt.Errorf("skip element: %w", err)
			}
		case xml.EndElement:
			return fmt.Errorf("%w: rss document without channel", ErrUnsupportedFormat)
		}
	}
}

func (s *xmlStream) Info() Info { return s.info }

func (s *xmlStream) Next() (*ParsedEntry, error) {
	for {
		tok, err := s.dec.Token()
		if err == io.EOF {
			return nil, io.EOF // decoder returns plain EOF only on a well-formed end
		}
		if err != nil {
			return nil, fmt.Errorf("parse feed document: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if s.isAtom {
			if e, handled, err := s.atomElement(se); handled || err != nil {
				if err != nil {
					return nil, err
				}
				if e != nil {
					return e, nil
				}
				continue
			}
		} else {
			if e, handled, err := s.rssElement(se); handled || err != nil {
				if err != nil {
					return nil, err
				}
				if e != nil {
					return e, nil
				}
				continue
			}
		}

		// unknown element at feed level, skip its subtree
		if err := s.dec.Skip(); err != nil {
			return nil, fmt.Errorf("parse feed document: %w", err)
		}
	}
}

// rssElement handles one channel-level start element. It returns the parsed
// entry when the element was an item, and handled=true when the element was
// consumed either way.
func (s *xmlStream) rssElement(se xml.StartElement) (*ParsedEntry, bool, error) {
	switch {
	case se.Name.Local == "item":
		var it rssItem
		if err := s.dec.DecodeElement(&it, &se); err != nil {
			return nil, true, fmt.Errorf("parse rss item: %w", err)
		}
		return it.entry(), true, nil
	case se.Name.Local == "title" && se.Name.Space != atomNS:
		return nil, true, s.decodeText(se, &s.info.Title)
	case se.Name.Local == "description":
		return nil, true, s.decodeText(se, &s.info.Description)
	case se.Name.Local == "link" && se.Name.Space == atomNS:
		if attrValue(se, "rel") == "hub" {
			s.info.HubURL = attrValue(se, "href")
		}
		return nil, true, s.skipElement()
	case se.Name.Local == "link":
		return nil, true, s.decodeText(se, &s.info.Link)
	}
	return nil, false, nil
}

// atomElement handles one feed-level start element of an Atom document
func (s *xmlStream) atomElement(se xml.StartElement) (*ParsedEntry, bool, error) {
	switch se.Name.Local {
	case "entry":
		var en atomEntry
		if err := s.dec.DecodeElement(&en, &se); err != nil {
			return nil, true, fmt.Errorf("parse atom entry: %w", err)
		}
		return en.entry(), true, nil
	case "title":
		return nil, true, s.decodeText(se, &s.info.Title)
	case "subtitle":
		return nil, true, s.decodeText(se, &s.info.Description)
	case "link":
		switch attrValue(se, "rel") {
		case "hub":
			s.info.HubURL = attrValue(se, "href")
		case "", "alternate":
			s.info.Link = attrValue(se, "href")
		}
		return nil, true, s.skipElement()
	}
	return nil, false, nil
}

func (s *xmlStream) decodeText(se xml.StartElement, dst *string) error {
	var v string
	if err := s.dec.DecodeElement(&v, &se); err != nil {
		return fmt.Errorf("parse feed document: %w", err)
	}
	*dst = strings.TrimSpace(v)
	return nil
}

func (s *xmlStream) skipElement() error {
	if err := s.dec.Skip(); err != nil {
		return fmt.Errorf("parse feed document: %w", err)
	}
	return nil
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	Encoded     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Author      string `xml:"author"`
	Creator     string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	PubDate     string `xml:"pubDate"`
}

func (it *rssItem) entry() *ParsedEntry {
	e := &ParsedEntry{
		GUID:      strings.TrimSpace(it.GUID),
		Title:     strings.TrimSpace(it.Title),
		Link:      strings.TrimSpace(it.Link),
		Summary:   strings.TrimSpace(it.Description),
		Content:   strings.TrimSpace(it.Encoded),
		Author:    strings.TrimSpace(it.Author),
		Published: parseDate(it.PubDate),
	}
	if e.Author == "" {
		e.Author = strings.TrimSpace(it.Creator)
	}
	return finalize(e)
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	ID      string     `xml:"id"`
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Summary string     `xml:"summary"`
	Content string     `xml:"content"`
	Author  struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

func (en *atomEntry) entry() *ParsedEntry {
	e := &ParsedEntry{
		GUID:      strings.TrimSpace(en.ID),
		Title:     strings.TrimSpace(en.Title),
		Summary:   strings.TrimSpace(en.Summary),
		Content:   strings.TrimSpace(en.Content),
		Author:    strings.TrimSpace(en.Author.Name),
		Published: parseDate(en.Published),
	}
	for _, l := range en.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			e.Link = l.Href
			break
		}
	}
	if e.Published.IsZero() {
		e.Published = parseDate(en.Updated)
	}
	return finalize(e)
}

// jsonStream parses a JSON Feed 1.x document key by key; items are decoded
// one at a time off the decoder
type jsonStream struct {
	dec      *json.Decoder
	info     Info
	inItems  bool
	sawItems bool
}

func newJSONStream(r io.Reader) (*jsonStream, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json feed: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrUnsupportedFormat
	}
	return &jsonStream{dec: dec, info: Info{Format: FormatJSON}}, nil
}

func (s *jsonStream) Info() Info { return s.info }

func (s *jsonStream) Next() (*ParsedEntry, error) {
	for {
		if s.inItems {
			if s.dec.More() {
				var it jsonItem
				if err := s.dec.Decode(&it); err != nil {
					return nil, fmt.Errorf("parse json feed item: %w", err)
				}
				return it.entry(), nil
			}
			if _, err := s.dec.Token(); err != nil { // closing ]
				return nil, fmt.Errorf("parse json feed: %w", err)
			}
			s.inItems = false
			continue
		}

		tok, err := s.dec.Token()
		if err == io.EOF {
			if !s.sawItems {
				return nil, fmt.Errorf("%w: json document without items", ErrUnsupportedFormat)
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("parse json feed: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			continue // end of the top-level object, next read returns EOF
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json feed: unexpected token %v", tok)
		}
		if err := s.handleKey(key); err != nil {
			return nil, err
		}
	}
}

func (s *jsonStream) handleKey(key string) error {
	switch key {
	case "version":
		var v string
		if err := s.dec.Decode(&v); err != nil {
			return fmt.Errorf("parse json feed version: %w", err)
		}
		if !strings.HasPrefix(v, "https://jsonfeed.org/version/") {
			return fmt.Errorf("%w: version %q", ErrUnsupportedFormat, v)
		}
	case "title":
		return s.decodeString(&s.info.Title)
	case "description":
		return s.decodeString(&s.info.Description)
	case "home_page_url":
		return s.decodeString(&s.info.Link)
	case "hubs":
		var hubs []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}
		if err := s.dec.Decode(&hubs); err != nil {
			return fmt.Errorf("parse json feed hubs: %w", err)
		}
		for _, h := range hubs {
			if h.Type == "" || strings.EqualFold(h.Type, "websub") {
				s.info.HubURL = h.URL
				break
			}
		}
	case "items":
		tok, err := s.dec.Token()
		if err != nil {
			return fmt.Errorf("parse json feed items: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return fmt.Errorf("parse json feed: items is not an array")
		}
		s.inItems = true
		s.sawItems = true
	default:
		var skip json.RawMessage
		if err := s.dec.Decode(&skip); err != nil {
			return fmt.Errorf("parse json feed: %w", err)
		}
	}
	return nil
}

func (s *jsonStream) decodeString(dst *string) error {
	if err := s.dec.Decode(dst); err != nil {
		return fmt.Errorf("parse json feed: %w", err)
	}
	return nil
}

type jsonItem struct {
	ID            any    `json:"id"` // spec allows strings and numbers
	URL           string `json:"url"`
	Title         string `json:"title"`
	ContentHTML   string `json:"content_html"`
	ContentText   string `json:"content_text"`
	Summary       string `json:"summary"`
	DatePublished string `json:"date_published"`
	DateModified  string `json:"date_modified"`
	Authors       []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (it *jsonItem) entry() *ParsedEntry {
	e := &ParsedEntry{
		GUID:      stringifyID(it.ID),
		Title:     strings.TrimSpace(it.Title),
		Link:      strings.TrimSpace(it.URL),
		Summary:   strings.TrimSpace(it.Summary),
		Content:   strings.TrimSpace(it.ContentHTML),
		Published: parseDate(it.DatePublished),
	}
	if e.Content == "" {
		e.Content = strings.TrimSpace(it.ContentText)
	}
	if len(it.Authors) > 0 {
		e.Author = strings.TrimSpace(it.Authors[0].Name)
	}
	if e.Published.IsZero() {
		e.Published = parseDate(it.DateModified)
	}
	return finalize(e)
}

func stringifyID(id any) string {
	switch v := id.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// finalize computes the content hash and applies the GUID fallback chain:
// explicit id, then link, then the hash itself
func finalize(e *ParsedEntry) *ParsedEntry {
	e.ContentHash = ContentHash(e.Title, e.Link, e.Summary)
	if e.GUID == "" {
		if e.Link != "" {
			e.GUID = e.Link
		} else {
			e.GUID = "sha256:" + e.ContentHash
		}
	}
	return e
}

// ContentHash returns a stable hex digest over whitespace-normalized title,
// link and summary; used as the dedup key when a source has no usable guid
func ContentHash(title, link, summary string) string {
	h := sha256.New()
	for _, part := range []string{title, link, summary} {
		h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(part), " "))))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// dateLayouts covers the formats seen in the wild across RSS and JSON feeds
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
