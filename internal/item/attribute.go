package item

import (
	"fmt"
	"strings"
)

// Attribute names one lazily resolved property of an item. The first eleven
// values line up with Column.
type Attribute int

const (
	AttrKind Attribute = iota
	// AttrSize is the logical length in bytes, not the space allocated on
	// disk. See Item.AllocatedSize.
	AttrSize
	AttrDateCreated
	AttrDateModified
	AttrDateAccessed
	AttrUserGroup
	AttrPermissions
	AttrUTI
	AttrMIMEType
	AttrFileType
	AttrCreatorType
	AttrOctalPermissions
	AttrIcon
	AttrHandlers
	AttrLabel
	AttrComment
	AttrFolderSize

	attrCount
)

var attributeNames = [attrCount]string{
	AttrKind:             "Kind",
	AttrSize:             "Size",
	AttrDateCreated:      "DateCreated",
	AttrDateModified:     "DateModified",
	AttrDateAccessed:     "DateAccessed",
	AttrUserGroup:        "UserGroup",
	AttrPermissions:      "Permissions",
	AttrUTI:              "UTI",
	AttrMIMEType:         "MIMEType",
	AttrFileType:         "FileType",
	AttrCreatorType:      "CreatorType",
	AttrOctalPermissions: "OctalPermissions",
	AttrIcon:             "Icon",
	AttrHandlers:         "Handlers",
	AttrLabel:            "Label",
	AttrComment:          "Comment",
	AttrFolderSize:       "FolderSize",
}

func (a Attribute) String() string {
	if a >= 0 && a < attrCount {
		return attributeNames[a]
	}
	return fmt.Sprintf("Attribute(%d)", int(a))
}

// Attributes lists every attribute in declaration order.
func Attributes() []Attribute {
	out := make([]Attribute, attrCount)
	for i := range out {
		out[i] = Attribute(i)
	}
	return out
}

// Column is one of the eleven displayable result columns.
type Column int

const (
	ColumnKind Column = iota
	ColumnSize
	ColumnDateCreated
	ColumnDateModified
	ColumnDateAccessed
	ColumnUserGroup
	ColumnPermissions
	ColumnUTI
	ColumnMIMEType
	ColumnFileType
	ColumnCreatorType

	columnCount
)

var columnTitles = [columnCount]string{
	ColumnKind:         "Kind",
	ColumnSize:         "Size",
	ColumnDateCreated:  "Date Created",
	ColumnDateModified: "Date Modified",
	ColumnDateAccessed: "Date Accessed",
	ColumnUserGroup:    "User:Group",
	ColumnPermissions:  "Permissions",
	ColumnUTI:          "UTI",
	ColumnMIMEType:     "MIME Type",
	ColumnFileType:     "File Type",
	ColumnCreatorType:  "Creator",
}

// Columns lists every column in display order.
func Columns() []Column {
	out := make([]Column, columnCount)
	for i := range out {
		out[i] = Column(i)
	}
	return out
}

// Attribute is the attribute a column renders.
func (c Column) Attribute() Attribute {
	return Attribute(c)
}

// String is the column's stable identifier, e.g. "DateModified".
func (c Column) String() string {
	if c >= 0 && c < columnCount {
		return attributeNames[c]
	}
	return fmt.Sprintf("Column(%d)", int(c))
}

// Title is the column header.
func (c Column) Title() string {
	if c >= 0 && c < columnCount {
		return columnTitles[c]
	}
	return c.String()
}

// ParseColumn accepts a column identifier, case-insensitively.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns() {
		if strings.EqualFold(s, c.String()) || strings.EqualFold(s, c.Title()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q", s)
}
