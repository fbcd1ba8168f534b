package credentials

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// File is a Provider that reads a profile from a shared AWS-style
// credentials file (ini format, "aws_access_key_id" / "aws_secret_access_key"
// / "aws_session_token" keys).
type File struct {
	path    string
	profile string
}

// NewFile returns a Provider for the named profile of the credentials file at
// path. An empty path falls back to $AWS_SHARED_CREDENTIALS_FILE and then to
// ~/.aws/credentials; an empty profile falls back to $AWS_PROFILE and then to
// "default".
func NewFile(path, profile string) *File {
	return &File{path: path, profile: profile}
}

// Retrieve parses the file on every call, so key rotation on disk is picked
// up by the next signing.
func (f *File) Retrieve(_ context.Context) (Value, error) {
	path, err := f.resolvePath()
	if err != nil {
		return Value{}, err
	}
	profile := f.profile
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}
	if profile == "" {
		profile = "default"
	}

	file, err := os.Open(path)
	if err != nil {
		return Value{}, fmt.Errorf("open credentials file: %w", err)
	}
	defer func() { _ = file.Close() }()

	section, err := scanProfile(file, profile)
	if err != nil {
		return Value{}, err
	}
	v := Value{
		AccessKeyID:     section["aws_access_key_id"],
		SecretAccessKey: section["aws_secret_access_key"],
		SessionToken:    section["aws_session_token"],
	}
	if !v.HasKeys() {
		return Value{}, fmt.Errorf("profile %q in %s has no complete key pair", profile, path)
	}
	return v, nil
}

func (f *File) resolvePath() (string, error) {
	if f.path != "" {
		return f.path, nil
	}
	if env := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); env != "" {
		return env, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".aws", "credentials"), nil
}

func scanProfile(file *os.File, profile string) (map[string]string, error) {
	section := map[string]string{}
	inProfile := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inProfile = strings.TrimSpace(line[1:len(line)-1]) == profile
			continue
		}
		if !inProfile {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		section[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	if len(section) == 0 {
		return nil, fmt.Errorf("profile %q not found", profile)
	}
	return section, nil
}
