package core

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// DocumentMUS serializes a Document in MUS format.
//
// Layout: the string fields in declaration order, CreatedAt as Unix
// microseconds, then the vector length followed by each component as a
// fixed-width float32. Timestamps decode as UTC.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

// documentStrings lists the string fields of d in wire order.
func documentStrings(d *Document) []*string {
	return []*string{
		&d.ID,
		(*string)(&d.Kind),
		&d.ChannelID,
		&d.UserID,
		&d.UserName,
		&d.SenderID,
		&d.ReceiverID,
		&d.Content,
	}
}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	for _, s := range documentStrings(&d) {
		n += ord.String.Marshal(*s, bs[n:])
	}
	n += varint.Int64.Marshal(d.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(len(d.Vector), bs[n:])
	for _, f := range d.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var m int
	for _, s := range documentStrings(&d) {
		*s, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return d, n, err
		}
	}

	micros, m, err := varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return d, n, err
	}
	d.CreatedAt = time.UnixMicro(micros).UTC()

	length, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return d, n, err
	}
	if length < 0 || length > len(bs)-n {
		return d, n, fmt.Errorf("%w: vector length %d", ErrMalformedDocument, length)
	}
	if length == 0 {
		return d, n, nil
	}

	d.Vector = make([]float32, length)
	for i := range d.Vector {
		d.Vector[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return d, n, err
		}
	}
	return d, n, nil
}

func (documentMUS) Size(d Document) (size int) {
	for _, s := range documentStrings(&d) {
		size += ord.String.Size(*s)
	}
	size += varint.Int64.Size(d.CreatedAt.UnixMicro())
	size += varint.Int.Size(len(d.Vector))
	for _, f := range d.Vector {
		size += raw.Float32.Size(f)
	}
	return size
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}
