// Package ifconfig parses the textual report produced by ifconfig-like tools. Both the classic layout
// (`RX packets:10 errors:0`) and the newer net-tools layout (`RX packets 10  bytes 20 (20.0 B)`) are understood.
package ifconfig

import (
	"bufio"
	"fmt"
	"strings"
	"unicode"
)

const (
	rxPrefix      = "rx_"
	txPrefix      = "tx_"
	maxLineLength = 1024 * 1024
)

// Interface is a single block of the report
type Interface struct {
	Name       string
	Attributes map[string]string
}

// Attribute returns the value of the named attribute
func (i *Interface) Attribute(key string) (string, bool) {
	val, ok := i.Attributes[key]
	return val, ok
}

// Parse splits the report in interface blocks. The first non-blank line, any non-blank line following a blank
// line and any line starting with a non-blank character open a new block. The remaining lines hold the block's
// attributes. Attribute keys are lower case, counters following a RX or TX marker get the rx_ or tx_ prefix.
// The first occurrence of a key wins.
func Parse(report string) ([]*Interface, error) {
	interfaces := make([]*Interface, 0)
	var current *Interface
	afterBlank := true

	scanner := bufio.NewScanner(strings.NewReader(report))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) == 0 {
			afterBlank = true
			continue
		}

		if afterBlank || !isIndented(line) {
			afterBlank = false
			fields := strings.Fields(line)
			current = &Interface{
				Name:       strings.TrimSuffix(fields[0], ":"),
				Attributes: make(map[string]string),
			}
			interfaces = append(interfaces, current)
			parseAttributes(current, fields[1:])
			continue
		}

		parseAttributes(current, strings.Fields(line))
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read ifconfig report: %w", err)
	}

	return interfaces, nil
}

// Find returns the interface with the exact provided name
func Find(interfaces []*Interface, name string) (*Interface, bool) {
	for _, iface := range interfaces {
		if iface.Name == name {
			return iface, true
		}
	}

	return nil, false
}

func isIndented(line string) bool {
	return line[0] == ' ' || line[0] == '\t'
}

func parseAttributes(iface *Interface, tokens []string) {
	prefix := ""
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		switch token {
		case "RX":
			prefix = rxPrefix
			continue
		case "TX":
			prefix = txPrefix
			continue
		}

		key, value, found := strings.Cut(token, ":")
		if found {
			if len(value) == 0 && i+1 < len(tokens) {
				// `inet6 addr: fe80::1/64`
				value = tokens[i+1]
				i++
			}
			setAttribute(iface, prefix, key, value)
			continue
		}

		if i+1 < len(tokens) && startsWithDigit(tokens[i+1]) {
			// `packets 10`
			setAttribute(iface, prefix, token, tokens[i+1])
			i++
		}
	}
}

func setAttribute(iface *Interface, prefix string, key string, value string) {
	if !isWord(key) || len(value) == 0 {
		return
	}

	key = strings.ToLower(key)
	if len(prefix) == 0 && key == "collisions" {
		prefix = txPrefix
	}

	fullKey := prefix + key
	_, exists := iface.Attributes[fullKey]
	if exists {
		return
	}

	iface.Attributes[fullKey] = value
}

func isWord(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
