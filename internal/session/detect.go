package session

import (
	"os"
	"os/exec"
	"strings"
)

// Detected is an identity hint pulled from the local environment, used
// to fill in name and email on lazily created profiles.
type Detected struct {
	Name  string
	Email string
}

// Detect attempts to detect the operator's identity.
// Priority order:
//  1. Git config (user.name + user.email)
//  2. Environment ($USER, whoami)
func Detect() Detected {
	if d, ok := detectFromGitConfig(); ok {
		return d
	}
	return detectFromEnvironment()
}

// detectFromGitConfig reads user.name and user.email from git config.
func detectFromGitConfig() (Detected, bool) {
	nameOut, err := exec.Command("git", "config", "user.name").Output()
	if err != nil {
		return Detected{}, false
	}
	name := strings.TrimSpace(string(nameOut))
	if name == "" {
		return Detected{}, false
	}

	d := Detected{Name: name}
	if emailOut, err := exec.Command("git", "config", "user.email").Output(); err == nil {
		d.Email = strings.TrimSpace(string(emailOut))
	}
	return d, true
}

// detectFromEnvironment falls back to the OS user.
func detectFromEnvironment() Detected {
	if name := os.Getenv("USER"); name != "" {
		return Detected{Name: name}
	}
	if out, err := exec.Command("whoami").Output(); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return Detected{Name: name}
		}
	}
	return Detected{Name: "user"}
}
