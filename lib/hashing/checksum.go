package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
)

type ChecksumProvider interface {
	GetChecksum() (string, error)
}

// ChecksumReaderProxy calculates the MD5 checksum of data as it is read.
type ChecksumReaderProxy struct {
	reader   io.Reader
	checksum hash.Hash
}

// NewMD5ReaderProxy wraps reader so that everything read through the proxy
// is fed into an MD5 hash.
func NewMD5ReaderProxy(reader io.Reader) *ChecksumReaderProxy {
	return &ChecksumReaderProxy{
		reader:   reader,
		checksum: md5.New(),
	}
}

func (p *ChecksumReaderProxy) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		if _, hashErr := p.checksum.Write(buf[:n]); hashErr != nil {
			return n, hashErr
		}
	}
	return n, err
}

// GetChecksum returns the MD5 of all bytes read so far as a hex string.
func (p *ChecksumReaderProxy) GetChecksum() (string, error) {
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}
