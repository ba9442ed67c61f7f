package ingest

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// codeBlockRe matches fenced code blocks, newlines included.
var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// BlockKind discriminates the typed blocks of a structured message body.
type BlockKind int

const (
	// BlockText is a text block carrying prompt content.
	BlockText BlockKind = iota
	// BlockImage is an image attachment marker.
	BlockImage
	// BlockOther is any block kind the pipeline does not interpret.
	BlockOther
)

// Block is one typed block of a structured message body.
type Block struct {
	Kind BlockKind
	Text string
}

// Content is the tagged representation of a message body: either a plain
// string or an ordered list of typed blocks.
type Content struct {
	Plain   string
	Blocks  []Block
	IsPlain bool
}

// rawBlock mirrors the wire shape of a content block.
type rawBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// decodeContent parses a message content field, which is either a JSON
// string or an array of typed blocks.
func decodeContent(raw json.RawMessage) (Content, error) {
	if len(raw) == 0 {
		return Content{IsPlain: true}, nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return Content{IsPlain: true, Plain: plain}, nil
	}

	var rawBlocks []rawBlock
	if err := json.Unmarshal(raw, &rawBlocks); err != nil {
		return Content{}, fmt.Errorf("content is neither string nor block list: %w", err)
	}

	blocks := make([]Block, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		switch rb.Type {
		case "text":
			blocks = append(blocks, Block{Kind: BlockText, Text: rb.Text})
		case "image":
			blocks = append(blocks, Block{Kind: BlockImage})
		default:
			blocks = append(blocks, Block{Kind: BlockOther})
		}
	}
	return Content{Blocks: blocks}, nil
}

// JoinedText extracts the full prompt text: all text blocks joined with
// newlines. hasImage is true when any image marker occurs anywhere in the
// block list.
func (c Content) JoinedText() (text string, hasImage bool) {
	if c.IsPlain {
		return c.Plain, false
	}

	var parts []string
	for _, b := range c.Blocks {
		switch b.Kind {
		case BlockText:
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case BlockImage:
			hasImage = true
		case BlockOther:
			// ignored
		}
	}
	return strings.Join(parts, "\n"), hasImage
}

// FirstText extracts only the first text block, the legacy single-block
// behavior kept for sources without multi-block messages.
func (c Content) FirstText() string {
	if c.IsPlain {
		return c.Plain
	}
	for _, b := range c.Blocks {
		if b.Kind == BlockText {
			return b.Text
		}
	}
	return ""
}
