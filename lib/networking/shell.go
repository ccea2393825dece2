package networking

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/rangefence/rangefence/lib/log"
)

// RunShellScript runs a hook script with the given extra environment
// variables on top of the current environment.
func RunShellScript(script string, envVars map[string]string) (string, error) {
	log.Infof("Running shell script '%s' with the following environment variables: %v", script, envVars)

	cmd := exec.Command("sh", "-c", script)

	env := os.Environ()
	for key, value := range envVars {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("failed to execute script: %v", err)
	}

	return stdout.String(), nil
}
