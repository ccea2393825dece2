package feeds

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/hashing"
	"github.com/rangefence/rangefence/lib/log"
)

// DownloadFeeds fetches every configured feed document into the feeds output
// directory. A failure to download one feed is logged and does not abort the
// remaining ones.
func DownloadFeeds(cfg *config.Config) error {
	client := &http.Client{}

	feedsDir := cfg.GetAbsFeedsOutputDir()
	if err := os.MkdirAll(feedsDir, 0755); err != nil {
		return fmt.Errorf("failed to create feeds directory: %v", err)
	}

	for _, feed := range cfg.Feeds {
		if err := downloadFeed(client, cfg, feed); err != nil {
			return err
		}
	}

	return nil
}

// DownloadFeed fetches a single feed document.
func DownloadFeed(cfg *config.Config, feed *config.FeedConfig) error {
	feedsDir := cfg.GetAbsFeedsOutputDir()
	if err := os.MkdirAll(feedsDir, 0755); err != nil {
		return fmt.Errorf("failed to create feeds directory: %v", err)
	}
	return downloadFeed(&http.Client{}, cfg, feed)
}

func downloadFeed(client *http.Client, cfg *config.Config, feed *config.FeedConfig) error {
	log.Infof("Downloading feed \"%s\" from URL: %s", feed.Name, feed.URL)

	resp, err := client.Get(feed.URL)
	if err != nil {
		log.Errorf("Failed to download feed \"%s\": %v", feed.Name, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Failed to download feed \"%s\": %s", feed.Name, resp.Status)
		return nil
	}

	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)

	content, err := io.ReadAll(bodyProxy)
	if err != nil {
		log.Errorf("Failed to read response for feed \"%s\": %v", feed.Name, err)
		return nil
	}

	filePath := FeedFilePath(cfg, feed)
	if changed, err := IsFileChanged(bodyProxy, filePath); err != nil {
		log.Errorf("Failed to calculate feed \"%s\" checksum: %v", feed.Name, err)
	} else if !changed {
		log.Infof("Feed \"%s\" is not changed, skipping write to disk", feed.Name)
		return nil
	}

	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write feed file to %s: %v", filePath, err)
	}
	if err := WriteChecksum(bodyProxy, filePath); err != nil {
		return fmt.Errorf("failed to write feed checksum: %v", err)
	}

	return nil
}

// FeedFilePath returns the on-disk location of the downloaded feed document.
func FeedFilePath(cfg *config.Config, feed *config.FeedConfig) string {
	return filepath.Join(cfg.GetAbsFeedsOutputDir(), feed.Name+".feed")
}

// ReadDocument loads the downloaded feed document from disk.
func ReadDocument(cfg *config.Config, feed *config.FeedConfig) (string, error) {
	filePath := FeedFilePath(cfg, feed)
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("feed \"%s\" is not downloaded yet (expected %s), run the download command first", feed.Name, filePath)
		}
		return "", fmt.Errorf("failed to read feed file '%s': %v", filePath, err)
	}
	return string(content), nil
}
