package utils

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/sigweihq/bifbridge/pkg/constants"
)

func CreateHTTPClientWithTimeouts() *http.Client {
	return &http.Client{
		Timeout: constants.NodeRequestTimeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   constants.TLSHandshakeTimeout,
			ResponseHeaderTimeout: constants.ResponseHeaderTimeout,
			ExpectContinueTimeout: constants.ExpectContinueTimeout,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // Disable redirects to prevent redirect-based SSRF
		},
	}
}

// ValidateNodeURL validates that a node URL is usable.
// BIF nodes commonly serve plain HTTP, so both http and https are accepted.
func ValidateNodeURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("node URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid node URL %s: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("node URL must use http or https: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("node URL has no host: %s", raw)
	}
	return nil
}

// HexToBytes decodes hex with or without a 0x prefix.
// Odd-length input is rejected rather than left-padded.
func HexToBytes(s string) ([]byte, error) {
	if has0xPrefix(s) {
		return hexutil.Decode(s)
	}
	return hex.DecodeString(s)
}

// IsHex reports whether s is even-length hex, with or without 0x
func IsHex(s string) bool {
	_, err := HexToBytes(s)
	return err == nil
}

// Strip0x removes a leading 0x or 0X
func Strip0x(s string) string {
	if has0xPrefix(s) {
		return s[2:]
	}
	return s
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// TrimTrailingSlash normalizes a base URL before paths are appended
func TrimTrailingSlash(s string) string {
	return strings.TrimRight(s, "/")
}
