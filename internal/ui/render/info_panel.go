package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/katsearch/internal/item"
	statepkg "github.com/kk-code-lab/katsearch/internal/state"
	textutil "github.com/kk-code-lab/katsearch/internal/textutil"
)

var infoLabels = map[item.Attribute]string{
	item.AttrKind:             "Kind",
	item.AttrSize:             "Size",
	item.AttrDateCreated:      "Created",
	item.AttrDateModified:     "Modified",
	item.AttrDateAccessed:     "Accessed",
	item.AttrUserGroup:        "Owner",
	item.AttrPermissions:      "Permissions",
	item.AttrUTI:              "UTI",
	item.AttrMIMEType:         "MIME type",
	item.AttrFileType:         "File type",
	item.AttrCreatorType:      "Creator",
	item.AttrOctalPermissions: "Octal",
	item.AttrIcon:             "Icon",
	item.AttrHandlers:         "Opens with",
	item.AttrLabel:            "Label",
	item.AttrComment:          "Comment",
	item.AttrFolderSize:       "Folder size",
}

type infoLine struct {
	label   string
	value   string
	unknown bool
}

// buildInfoLines resolves every attribute of it. The folder size is only
// shown once computed; walking a tree is left to the explicit action.
func (r *Renderer) buildInfoLines(it *item.Item) []infoLine {
	lines := []infoLine{
		{label: "Name", value: it.Name()},
		{label: "Path", value: it.Path()},
	}
	if textutil.HasInvisibleRunes(it.Name()) {
		lines = append(lines, infoLine{label: "Warning", value: "name contains invisible characters", unknown: true})
	}
	for _, attr := range item.Attributes() {
		if attr == item.AttrFolderSize {
			if !it.IsDirectory() {
				continue
			}
			if it.State(attr) == item.Unresolved {
				lines = append(lines, infoLine{label: infoLabels[attr], value: "press s to compute", unknown: true})
				continue
			}
		}
		res := it.Resolve(r.ctx, attr)
		line := infoLine{label: infoLabels[attr], value: res.Display}
		if res.Failure != nil {
			line.value = fmt.Sprintf("? (%s)", res.Failure.Kind)
			line.unknown = true
		}
		lines = append(lines, line)
	}
	return lines
}

func (r *Renderer) drawInfoPanel(state *statepkg.AppState, w, h int) {
	it := state.CurrentItem()
	if it == nil {
		return
	}
	labelStyle := tcell.StyleDefault.Foreground(r.theme.ColumnTitleFg)
	valueStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	unknownStyle := valueStyle.Foreground(r.theme.UnknownFg)

	const labelWidth = 13
	row := 2
	for _, line := range r.buildInfoLines(it) {
		if row >= h-1 {
			break
		}
		r.drawTextLine(1, row, labelWidth, textutil.PadRight(line.label, labelWidth), labelStyle)
		style := valueStyle
		if line.unknown {
			style = unknownStyle
		}
		value := textutil.SanitizeTerminalText(textutil.ExpandTabs(line.value, textutil.DefaultTabWidth))
		valueX := labelWidth + 2
		r.drawTextLine(valueX, row, w-valueX, r.truncateTextToWidth(value, w-valueX), style)
		row++
	}
}
