package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/keymark/internal/engine"
)

// Action names a formatting action.
type Action string

// Formatting actions.
const (
	Heading1       Action = "heading1"
	Heading2       Action = "heading2"
	Heading3       Action = "heading3"
	Bold           Action = "bold"
	Italic         Action = "italic"
	Strikethrough  Action = "strikethrough"
	BulletList     Action = "bullet_list"
	NumberedList   Action = "numbered_list"
	TaskList       Action = "task_list"
	Link           Action = "link"
	Image          Action = "image"
	InlineCode     Action = "inline_code"
	KeyboardKey    Action = "keyboard_key"
	CodeBlock      Action = "code_block"
	Blockquote     Action = "blockquote"
	HorizontalRule Action = "horizontal_line"
	Math           Action = "math"
	Note           Action = "note"
	Upper          Action = "to_uppercase"
	Lower          Action = "to_lowercase"
	Undo           Action = "undo"
	Redo           Action = "redo"
)

// NoteText is the callout inserted by the Note action.
const NoteText = "> [!NOTE]> P.S goes here ."

const mathDelimiter = "$$"

type markup struct {
	insert string
	before string
	after  string
}

var markups = map[Action]markup{
	Heading1:       {insert: "# "},
	Heading2:       {insert: "## "},
	Heading3:       {insert: "### "},
	Bold:           {before: "**", after: "**"},
	Italic:         {before: "*", after: "*"},
	Strikethrough:  {before: "~~", after: "~~"},
	BulletList:     {insert: "- "},
	NumberedList:   {insert: "1. "},
	TaskList:       {insert: "- [ ] "},
	Link:           {insert: "[Link Text](http://)"},
	Image:          {insert: "![Alt Text](url)"},
	InlineCode:     {before: "`", after: "`"},
	KeyboardKey:    {before: "<kbd>", after: "</kbd>"},
	CodeBlock:      {insert: "```\n\n```"},
	Blockquote:     {insert: "> "},
	HorizontalRule: {insert: "\n---\n"},
}

// Notice is a localizable status message produced by an action.
// An empty Key means there is nothing to report.
type Notice struct {
	Key  string
	Args []any
}

// Actions returns every action name in sorted order.
func Actions() []Action {
	out := []Action{Math, Note, Upper, Lower, Undo, Redo}
	for a := range markups {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := markups[a]; ok {
		return a, nil
	}
	switch a {
	case Math, Note, Upper, Lower, Undo, Redo:
		return a, nil
	}
	return "", fmt.Errorf("unknown format action %q", s)
}

// Apply performs a on buf and returns the status notice to show.
func Apply(buf *engine.Engine, a Action) (Notice, error) {
	if s, ok := markups[a]; ok {
		if s.insert != "" {
			return Insert(buf, s.insert)
		}
		return Wrap(buf, s.before, s.after)
	}

	switch a {
	case Math:
		return insertMath(buf)
	case Note:
		if err := buf.InsertAtCursor(NoteText); err != nil {
			return Notice{}, err
		}
		return Notice{Key: "notes_inserted"}, nil
	case Upper:
		return convertCase(buf, strings.ToUpper)
	case Lower:
		return convertCase(buf, strings.ToLower)
	case Undo:
		if !buf.CanUndo() {
			return Notice{}, nil
		}
		if err := buf.Undo(); err != nil {
			return Notice{}, err
		}
		return Notice{Key: "undo_done"}, nil
	case Redo:
		if !buf.CanRedo() {
			return Notice{}, nil
		}
		if err := buf.Redo(); err != nil {
			return Notice{}, err
		}
		return Notice{Key: "redo_done"}, nil
	}
	return Notice{}, fmt.Errorf("unknown format action %q", a)
}

// Insert replaces the selection (or inserts at the cursor) with text.
func Insert(buf *engine.Engine, text string) (Notice, error) {
	if err := buf.InsertAtCursor(text); err != nil {
		return Notice{}, err
	}
	return Notice{Key: "text_inserted", Args: []any{text}}, nil
}

// Wrap surrounds the selection with before and after, or inserts the empty
// pair when nothing is selected.
func Wrap(buf *engine.Engine, before, after string) (Notice, error) {
	if err := buf.InsertAtCursor(before + buf.SelectedText() + after); err != nil {
		return Notice{}, err
	}
	return Notice{Key: "text_wrapped", Args: []any{before, after}}, nil
}

// insertMath wraps the selection in $$ delimiters. Without a selection it
// inserts "$$" and leaves the cursor between the two dollar signs.
func insertMath(buf *engine.Engine) (Notice, error) {
	if buf.HasSelection() {
		if err := buf.InsertAtCursor(mathDelimiter + buf.SelectedText() + mathDelimiter); err != nil {
			return Notice{}, err
		}
		return Notice{Key: "math_formula_inserted"}, nil
	}

	if err := buf.InsertAtCursor(mathDelimiter); err != nil {
		return Notice{}, err
	}
	buf.SetCursor(buf.Cursor() - 1)
	return Notice{Key: "math_formula_inserted"}, nil
}

func convertCase(buf *engine.Engine, fn func(string) string) (Notice, error) {
	if !buf.HasSelection() {
		return Notice{}, nil
	}
	sel := buf.Selection()
	start := sel.Start()

	converted := fn(buf.SelectedText())
	if err := buf.InsertAtCursor(converted); err != nil {
		return Notice{}, err
	}
	buf.SetSelection(start, start+len(converted))
	return Notice{}, nil
}
