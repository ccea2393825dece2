package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/feeds"
)

// FeedStatus is the per-feed state reported by the status endpoint.
type FeedStatus struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	Accepted  int        `json:"accepted"`
	Rejected  int        `json:"rejected"`
	LastError string     `json:"last_error,omitempty"`
}

// SyncService serializes download+apply runs triggered over the API. One sync
// owns the firewall state at a time.
type SyncService struct {
	configPath string

	mu       sync.Mutex
	scans    map[string]*feeds.FeedScan
	statuses map[string]*FeedStatus
}

func NewSyncService(configPath string) *SyncService {
	return &SyncService{
		configPath: configPath,
		scans:      make(map[string]*feeds.FeedScan),
		statuses:   make(map[string]*FeedStatus),
	}
}

func (s *SyncService) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}
	return cfg, nil
}

// SyncFeed downloads and applies a single feed, recording the outcome.
func (s *SyncService) SyncFeed(name string) (*feeds.FeedScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	feed, err := cfg.FeedByName(name)
	if err != nil {
		return nil, err
	}

	status := &FeedStatus{Name: feed.Name, URL: feed.URL}
	s.statuses[feed.Name] = status

	if err := feeds.DownloadFeed(cfg, feed); err != nil {
		status.LastError = err.Error()
		return nil, err
	}

	scan, err := feeds.ApplyFeed(cfg, feed, feeds.ApplyOptions{})
	if err != nil {
		status.LastError = err.Error()
		return scan, err
	}

	now := time.Now()
	status.LastSync = &now
	status.Accepted = scan.AcceptedCount()
	status.Rejected = scan.RejectedCount()
	s.scans[feed.Name] = scan

	return scan, nil
}

// Status reports all configured feeds with their last sync outcome.
func (s *SyncService) Status() ([]*FeedStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	var statuses []*FeedStatus
	for _, feed := range cfg.Feeds {
		if status, ok := s.statuses[feed.Name]; ok {
			statuses = append(statuses, status)
		} else {
			statuses = append(statuses, &FeedStatus{Name: feed.Name, URL: feed.URL})
		}
	}
	return statuses, nil
}

// Addresses returns the accepted/rejected lists of the last sync of a feed.
func (s *SyncService) Addresses(name string) (*feeds.FeedScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[name]
	if !ok {
		return nil, fmt.Errorf("feed \"%s\" has not been synced yet", name)
	}
	return scan, nil
}

// Feeds lists the configured feeds.
func (s *SyncService) Feeds() ([]*config.FeedConfig, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}
