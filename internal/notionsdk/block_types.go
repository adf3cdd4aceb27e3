package notionsdk

// BlockType tags the variant carried by a Block.
type BlockType string

const (
	BlockParagraph     BlockType = "paragraph"
	BlockHeading2      BlockType = "heading_2"
	BlockHeading3      BlockType = "heading_3"
	BlockBulletedItem  BlockType = "bulleted_list_item"
	BlockToDo          BlockType = "to_do"
	BlockDivider       BlockType = "divider"
	BlockTable         BlockType = "table"
	BlockTableRow      BlockType = "table_row"
	BlockChildDatabase BlockType = "child_database"
)

// RichText is a single styled text run. Outbound payloads set Text;
// inbound payloads also carry the rendered PlainText.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

// Text builds a one-run rich text array, the shape every block body uses.
func Text(content string) []RichText {
	return []RichText{{Type: "text", Text: &TextContent{Content: content}}}
}

// PlainString flattens a rich text array to its concatenated plain text.
func PlainString(rt []RichText) string {
	var out string
	for _, r := range rt {
		if r.PlainText != "" {
			out += r.PlainText
		} else if r.Text != nil {
			out += r.Text.Content
		}
	}
	return out
}

// Block is an ordered, heterogeneous content node. Exactly one of the
// variant pointers is set, matching Type. Unknown inbound variants keep
// their Type and ID with all variant pointers nil, which is enough for
// callers that only route on Type.
type Block struct {
	Object string    `json:"object,omitempty"`
	ID     string    `json:"id,omitempty"`
	Type   BlockType `json:"type"`

	Paragraph        *TextBlock          `json:"paragraph,omitempty"`
	Heading2         *TextBlock          `json:"heading_2,omitempty"`
	Heading3         *TextBlock          `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock          `json:"bulleted_list_item,omitempty"`
	ToDo             *ToDoBlock          `json:"to_do,omitempty"`
	Divider          *struct{}           `json:"divider,omitempty"`
	Table            *TableBlock         `json:"table,omitempty"`
	TableRow         *TableRowBlock      `json:"table_row,omitempty"`
	ChildDatabase    *ChildDatabaseBlock `json:"child_database,omitempty"`
}

// TextBlock is the shared body of paragraph, heading and bulleted variants.
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
}

type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

type TableBlock struct {
	TableWidth      int     `json:"table_width"`
	HasColumnHeader bool    `json:"has_column_header"`
	HasRowHeader    bool    `json:"has_row_header"`
	Children        []Block `json:"children,omitempty"`
}

type TableRowBlock struct {
	Cells [][]RichText `json:"cells"`
}

type ChildDatabaseBlock struct {
	Title string `json:"title,omitempty"`
}

// NewParagraph builds a paragraph block.
func NewParagraph(text string) Block {
	return Block{Object: "block", Type: BlockParagraph, Paragraph: &TextBlock{RichText: Text(text)}}
}

// NewHeading2 builds a second-level heading block.
func NewHeading2(text string) Block {
	return Block{Object: "block", Type: BlockHeading2, Heading2: &TextBlock{RichText: Text(text)}}
}

// NewHeading3 builds a third-level heading block.
func NewHeading3(text string) Block {
	return Block{Object: "block", Type: BlockHeading3, Heading3: &TextBlock{RichText: Text(text)}}
}

// NewBulletedItem builds a bulleted list item block.
func NewBulletedItem(text string) Block {
	return Block{Object: "block", Type: BlockBulletedItem, BulletedListItem: &TextBlock{RichText: Text(text)}}
}

// NewToDo builds a to-do block with its checked state.
func NewToDo(text string, checked bool) Block {
	return Block{Object: "block", Type: BlockToDo, ToDo: &ToDoBlock{RichText: Text(text), Checked: checked}}
}

// NewDivider builds a divider block.
func NewDivider() Block {
	return Block{Object: "block", Type: BlockDivider, Divider: &struct{}{}}
}

// NewTableRow builds a table row from plain text cells.
func NewTableRow(cells ...string) Block {
	row := &TableRowBlock{Cells: make([][]RichText, 0, len(cells))}
	for _, c := range cells {
		row.Cells = append(row.Cells, Text(c))
	}
	return Block{Object: "block", Type: BlockTableRow, TableRow: row}
}

// NewTable builds a table block with a header row followed by body rows.
func NewTable(width int, rows ...Block) Block {
	return Block{Object: "block", Type: BlockTable, Table: &TableBlock{
		TableWidth:      width,
		HasColumnHeader: true,
		Children:        rows,
	}}
}
