// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package probe reads identifying metadata from the head and tail of a
// stream: the sniffed MIME type, an ID3v2 header and an ID3v1 trailer.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/drivestream/drivestream/internal/stream"
	"github.com/gabriel-vasile/mimetype"
	jsoniter "github.com/json-iterator/go"
)

const (
	// SniffLen is the number of leading bytes used for MIME detection.
	SniffLen = 3072

	id3v2HeaderLen = 10
	id3v1Len       = 128
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BlockStream is the block-read surface a tag reader consumes.
type BlockStream interface {
	Name() string
	Length() int64
	ReadBlock(ctx context.Context, n uint64) []byte
	Seek(offset int64, origin stream.Origin)
	Tell() int64
}

type ID3v2Header struct {
	Major    uint8 `json:"major"`
	Revision uint8 `json:"revision"`
	Flags    uint8 `json:"flags"`
	// Size of the tag excluding the 10-byte header.
	Size int64 `json:"size"`
}

type ID3v1Tag struct {
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Album   string `json:"album,omitempty"`
	Year    string `json:"year,omitempty"`
	Comment string `json:"comment,omitempty"`
	// Track is set for ID3v1.1 tags only.
	Track uint8 `json:"track,omitempty"`
	Genre uint8 `json:"genre"`
}

type Result struct {
	Name      string       `json:"name"`
	Length    int64        `json:"length"`
	MIME      string       `json:"mime"`
	Extension string       `json:"extension,omitempty"`
	ID3v2     *ID3v2Header `json:"id3v2,omitempty"`
	ID3v1     *ID3v1Tag    `json:"id3v1,omitempty"`
}

// Probe inspects s and leaves its cursor at 0. A failed or short read only
// makes the result less complete.
func Probe(ctx context.Context, s BlockStream) (*Result, error) {
	r := &Result{Name: s.Name(), Length: s.Length()}
	defer s.Seek(0, stream.Start)

	s.Seek(0, stream.Start)
	head := s.ReadBlock(ctx, SniffLen)
	if len(head) == 0 && s.Length() > 0 {
		return r, fmt.Errorf("probe %s: could not read the first bytes", s.Name())
	}

	mt := mimetype.Detect(head)
	r.MIME = mt.String()
	r.Extension = mt.Extension()

	if h, err := ParseID3v2Header(head); err == nil {
		r.ID3v2 = h
	}

	if s.Length() >= id3v1Len {
		s.Seek(id3v1Len, stream.End)
		if tag, err := ParseID3v1(s.ReadBlock(ctx, id3v1Len)); err == nil {
			r.ID3v1 = tag
		}
	}
	return r, nil
}

var errNoTag = errors.New("no tag")

// ParseID3v2Header decodes the 10-byte header at the start of b.
func ParseID3v2Header(b []byte) (*ID3v2Header, error) {
	if len(b) < id3v2HeaderLen || !bytes.HasPrefix(b, []byte("ID3")) {
		return nil, errNoTag
	}
	if b[3] == 0xFF || b[4] == 0xFF {
		return nil, fmt.Errorf("id3v2: invalid version %d.%d", b[3], b[4])
	}

	var size int64
	for _, c := range b[6:10] {
		if c&0x80 != 0 {
			return nil, fmt.Errorf("id3v2: size byte %#x is not syncsafe", c)
		}
		size = size<<7 | int64(c)
	}
	return &ID3v2Header{Major: b[3], Revision: b[4], Flags: b[5], Size: size}, nil
}

// ParseID3v1 decodes a 128-byte ID3v1 or ID3v1.1 trailer.
func ParseID3v1(b []byte) (*ID3v1Tag, error) {
	if len(b) != id3v1Len || !bytes.HasPrefix(b, []byte("TAG")) {
		return nil, errNoTag
	}

	tag := &ID3v1Tag{
		Title:  field(b[3:33]),
		Artist: field(b[33:63]),
		Album:  field(b[63:93]),
		Year:   field(b[93:97]),
		Genre:  b[127],
	}
	comment := b[97:127]
	if comment[28] == 0 && comment[29] != 0 {
		tag.Track = comment[29]
		comment = comment[:28]
	}
	tag.Comment = field(comment)
	return tag, nil
}

func field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " ")
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []*Result) error {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("MarshalIndent: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// WriteText writes one block of key: value lines per result.
func WriteText(w io.Writer, results []*Result) error {
	var buf bytes.Buffer
	for i, r := range results {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "name:   %s\nlength: %d\nmime:   %s\n", r.Name, r.Length, r.MIME)
		if h := r.ID3v2; h != nil {
			fmt.Fprintf(&buf, "id3v2:  2.%d.%d flags=0x%02x size=%d\n", h.Major, h.Revision, h.Flags, h.Size)
		}
		if t := r.ID3v1; t != nil {
			fmt.Fprintf(&buf, "id3v1:  %q by %q on %q (%s) genre=%d", t.Title, t.Artist, t.Album, t.Year, t.Genre)
			if t.Track != 0 {
				fmt.Fprintf(&buf, " track=%d", t.Track)
			}
			buf.WriteByte('\n')
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
