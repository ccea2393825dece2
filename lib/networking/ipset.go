package networking

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/rangefence/rangefence/lib/addrsyntax"
)

const ipsetCommand = "ipset"

// IPSet is a handle to a kernel ipset of type hash:net.
type IPSet struct {
	Name   string
	Family addrsyntax.Family
}

func BuildIPSet(name string, family addrsyntax.Family) *IPSet {
	return &IPSet{Name: name, Family: family}
}

func (s *IPSet) familyFlag() string {
	if s.Family == addrsyntax.IPv6 {
		return "inet6"
	}
	return "inet"
}

// CreateIfNotExists creates the ipset, tolerating an already existing one.
func (s *IPSet) CreateIfNotExists() error {
	cmd := exec.Command(ipsetCommand, "create", s.Name, "hash:net", "family", s.familyFlag(), "-exist")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create ipset %s (%s): %v\n%s", s.Name, s.Family, err, output)
	}
	return nil
}

// Flush removes all entries from the ipset.
func (s *IPSet) Flush() error {
	cmd := exec.Command(ipsetCommand, "flush", s.Name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to flush ipset %s: %v\n%s", s.Name, err, output)
	}
	return nil
}

// Exists checks whether the ipset is present in the kernel.
func (s *IPSet) Exists() (bool, error) {
	cmd := exec.Command(ipsetCommand, "-n", "list", s.Name)
	if err := cmd.Start(); err != nil {
		return false, err
	}

	if err := cmd.Wait(); err != nil {
		if exiterr, ok := err.(*exec.ExitError); ok {
			return exiterr.ExitCode() == 0, nil
		}
		return false, err
	}
	return true, nil
}

// OpenWriter starts an `ipset restore` process for batch imports.
func (s *IPSet) OpenWriter() (*IPSetWriter, error) {
	if _, err := exec.LookPath(ipsetCommand); err != nil {
		return nil, fmt.Errorf("failed to find ipset command: %v", err)
	}

	cmd := exec.Command(ipsetCommand, "restore", "-exist")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ipset restore: %v", err)
	}

	return &IPSetWriter{set: s, cmd: cmd, stdin: stdin}, nil
}

// IPSetWriter streams `add` commands into a running `ipset restore`.
type IPSetWriter struct {
	set   *IPSet
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func (w *IPSetWriter) GetIPSet() *IPSet {
	return w.set
}

// Add appends one network to the set. The prefix is passed through exactly as
// extracted from the feed; ipset accepts both bare addresses and CIDR form.
func (w *IPSetWriter) Add(prefix string) error {
	if _, err := fmt.Fprintf(w.stdin, "add %s %s\n", w.set.Name, prefix); err != nil {
		return fmt.Errorf("failed to add %s to ipset %s: %v", prefix, w.set.Name, err)
	}
	return nil
}

// Close finishes the restore batch and waits for the process to exit.
func (w *IPSetWriter) Close() error {
	if err := w.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close stdin pipe: %v", err)
	}
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ipset restore for %s failed: %v", w.set.Name, err)
	}
	return nil
}
