// Package playlist parses the Navi-X PLS-like playlist format: blocks of
// key=value lines separated by blank or bare "#" lines, with an optional
// multi-line description field.
package playlist

import (
	"bufio"
	"io"
	"strings"
)

// ItemType is the kind of entry a playlist record describes.
type ItemType string

const (
	TypeVideo    ItemType = "video"
	TypeAudio    ItemType = "audio"
	TypePlaylist ItemType = "playlist"
)

// Item is one playlist record. Fields beyond the well-known ones (Name, URL,
// Type, Description) are preserved in Extra so callers can read
// processor-specific keys like swfurl/playpath without the parser needing
// to know every dialect.
type Item struct {
	Name        string
	URL         string
	Type        ItemType
	Description string
	Extra       map[string]string
}

const descriptionTerminator = "/description"

// Parse reads a PLS-like stream and returns every record that has a `type`
// key. Records without one are silently skipped.
func Parse(r io.Reader) ([]Item, error) {
	var items []Item
	fields := map[string]string{}
	inDescription := false
	var descBuilder strings.Builder

	flush := func() {
		if _, ok := fields["type"]; ok {
			item := Item{
				Name:        fields["name"],
				URL:         fields["URL"],
				Type:        ItemType(fields["type"]),
				Description: descBuilder.String(),
				Extra:       map[string]string{},
			}
			for k, v := range fields {
				switch k {
				case "name", "URL", "type", "description":
				default:
					item.Extra[k] = v
				}
			}
			items = append(items, item)
		}
		fields = map[string]string{}
		descBuilder.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if inDescription {
			if strings.HasSuffix(line, descriptionTerminator) {
				inDescription = false
				line = line[:len(line)-len(descriptionTerminator)]
			}
			descBuilder.WriteByte('\n')
			descBuilder.WriteString(line)
			continue
		}

		if line == "" || line == "#" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		i := strings.IndexByte(line, '=')
		if i < 0 {
			continue
		}
		key, val := line[:i], line[i+1:]
		if key == "description" {
			if strings.HasSuffix(val, descriptionTerminator) {
				val = val[:len(val)-len(descriptionTerminator)]
			} else {
				inDescription = true
			}
			descBuilder.WriteString(val)
			continue
		}
		fields[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return items, nil
}
