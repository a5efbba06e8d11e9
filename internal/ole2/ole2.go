// Package ole2 inspects OLE2 compound files, the container behind legacy
// Office formats and password-protected OOXML documents.
package ole2

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"
)

// Doc summarizes a compound file's directory.
type Doc struct {
	Streams   []string
	Encrypted bool
}

// FILEPASS record id in BIFF workbook streams.
const biffFilePass = 0x002F

// FILEPASS appears right after the workbook globals BOF, so a bounded scan
// is enough.
const maxBiffScan = 64 << 10

const maxStreamBytes = 64 << 20

// Inspect walks the compound file directory and reports whether the
// document is encrypted. Three encryption shapes exist: dedicated streams
// for protected OOXML payloads, the fEncrypted FIB bit for Word binaries,
// and the FILEPASS record for Excel binaries.
func Inspect(r io.ReaderAt) (*Doc, error) {
	cf, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	doc := &Doc{}
	for entry, err := cf.Next(); err == nil; entry, err = cf.Next() {
		doc.Streams = append(doc.Streams, entry.Name)

		switch entry.Name {
		case "EncryptionInfo", "EncryptedPackage", "EncryptedSummary", "\x06DataSpaces":
			doc.Encrypted = true

		case "WordDocument":
			buf := make([]byte, 12)
			if n, _ := io.ReadFull(cf, buf); n == len(buf) {
				flags := binary.LittleEndian.Uint16(buf[10:12])
				if flags&0x0100 != 0 {
					doc.Encrypted = true
				}
			}

		case "Workbook", "Book":
			if biffHasFilePass(cf, entry.Size) {
				doc.Encrypted = true
			}
		}
	}
	return doc, nil
}

// ReadStream returns the named stream's bytes.
func ReadStream(r io.ReaderAt, name string) ([]byte, error) {
	cf, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	for entry, err := cf.Next(); err == nil; entry, err = cf.Next() {
		if entry.Name != name {
			continue
		}
		size := entry.Size
		if size > maxStreamBytes {
			size = maxStreamBytes
		}
		buf := make([]byte, size)
		n, _ := io.ReadFull(cf, buf)
		return buf[:n], nil
	}
	return nil, fmt.Errorf("stream %q not found", name)
}

// biffHasFilePass walks BIFF records looking for FILEPASS. Records are
// [id:2][length:2][data], and the scan stops at the stream's first EOF
// record.
func biffHasFilePass(r io.Reader, size int64) bool {
	if size > maxBiffScan {
		size = maxBiffScan
	}
	data := make([]byte, size)
	n, _ := io.ReadFull(r, data)
	data = data[:n]

	off := 0
	for off+4 <= len(data) {
		id := binary.LittleEndian.Uint16(data[off:])
		recLen := int(binary.LittleEndian.Uint16(data[off+2:]))
		if id == biffFilePass {
			return true
		}
		if id == 0x000A { // EOF
			return false
		}
		off += 4 + recLen
	}
	return false
}
