// Package export serializes engine state to JSON.
//
// The document shape is
//
//	{
//	  "items":    [{"id": ..., "label": ...}],
//	  "selected": [id, ...],
//	  "tree":     {"id": ..., "label": ..., "children": [...]},
//	  "history":  {"undo": [...], "redo": [...]}
//	}
//
// History entries carry "description", "items" and "timestamp" and are
// listed oldest first.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/regroup/internal/engine"
)

const emptyDocument = `{"items":[],"selected":[],"tree":{},"history":{"undo":[],"redo":[]}}`

// State is the subset of the engine an export reads.
type State interface {
	Items() []engine.Item
	Selected() []engine.Item
	Root() *engine.Node
	UndoInfo() []engine.OperationInfo
	RedoInfo() []engine.OperationInfo
}

// Document builds the compact JSON document for s.
func Document(s State) ([]byte, error) {
	doc := []byte(emptyDocument)
	var err error

	for _, it := range s.Items() {
		doc, err = sjson.SetBytes(doc, "items.-1", map[string]any{
			"id":    string(it.ID),
			"label": it.Label,
		})
		if err != nil {
			return nil, fmt.Errorf("export items: %w", err)
		}
	}

	for _, it := range s.Selected() {
		if doc, err = sjson.SetBytes(doc, "selected.-1", string(it.ID)); err != nil {
			return nil, fmt.Errorf("export selection: %w", err)
		}
	}

	if root := s.Root(); root != nil {
		raw, err := Node(root)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRawBytes(doc, "tree", raw); err != nil {
			return nil, fmt.Errorf("export tree: %w", err)
		}
	}

	if doc, err = setHistory(doc, "history.undo", s.UndoInfo()); err != nil {
		return nil, err
	}
	if doc, err = setHistory(doc, "history.redo", s.RedoInfo()); err != nil {
		return nil, err
	}
	return doc, nil
}

// Node serializes n and its descendants.
func Node(n *engine.Node) ([]byte, error) {
	raw := []byte(`{"children":[]}`)
	var err error
	if raw, err = sjson.SetBytes(raw, "id", string(n.ID())); err != nil {
		return nil, fmt.Errorf("export node: %w", err)
	}
	if raw, err = sjson.SetBytes(raw, "label", n.Label()); err != nil {
		return nil, fmt.Errorf("export node: %w", err)
	}
	for _, c := range n.Children() {
		child, err := Node(c)
		if err != nil {
			return nil, err
		}
		if raw, err = sjson.SetRawBytes(raw, "children.-1", child); err != nil {
			return nil, fmt.Errorf("export node %q: %w", n.Label(), err)
		}
	}
	return raw, nil
}

func setHistory(doc []byte, path string, infos []engine.OperationInfo) ([]byte, error) {
	var err error
	for _, info := range infos {
		doc, err = sjson.SetBytes(doc, path+".-1", map[string]any{
			"description": info.Description,
			"items":       info.Items,
			"timestamp":   info.Timestamp.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", path, err)
		}
	}
	return doc, nil
}

// Write writes the document for s to w, indented when indent is true.
func Write(w io.Writer, s State, indent bool) error {
	doc, err := Document(s)
	if err != nil {
		return err
	}
	if indent {
		doc = pretty.Pretty(doc)
	} else {
		doc = append(doc, '\n')
	}
	_, err = w.Write(doc)
	return err
}

// Query evaluates a gjson path against the document for s and returns
// the raw JSON of the result. An empty path returns the whole document.
func Query(s State, path string) (string, error) {
	doc, err := Document(s)
	if err != nil {
		return "", err
	}
	if path == "" {
		return string(doc), nil
	}
	res := gjson.GetBytes(doc, path)
	if !res.Exists() {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, path)
	}
	return res.Raw, nil
}
