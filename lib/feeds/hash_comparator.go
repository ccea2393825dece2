package feeds

import (
	"errors"
	"io"
	"os"

	"github.com/rangefence/rangefence/lib/hashing"
	"github.com/rangefence/rangefence/lib/log"
)

// IsFileChanged compares the checksum of freshly downloaded content with the
// sidecar checksum of the previous download.
func IsFileChanged(provider hashing.ChecksumProvider, filePath string) (bool, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	checksum, err := provider.GetChecksum()
	if err != nil {
		return false, err
	}

	checksumFilePath := filePath + ".md5"
	previous, err := readChecksum(checksumFilePath)
	if err != nil {
		log.Debugf("Failed to read checksum file '%s', assuming it's changed: %v", checksumFilePath, err)
		return true, nil
	}
	return string(previous) != checksum, nil
}

// WriteChecksum stores the checksum sidecar next to the downloaded file.
func WriteChecksum(provider hashing.ChecksumProvider, filePath string) error {
	checksum, err := provider.GetChecksum()
	if err != nil {
		return err
	}
	return os.WriteFile(filePath+".md5", []byte(checksum), 0644)
}

func readChecksum(checksumFilePath string) ([]byte, error) {
	checksumFile, err := os.Open(checksumFilePath)
	if err != nil {
		return nil, err
	}
	defer checksumFile.Close()

	return io.ReadAll(checksumFile)
}
