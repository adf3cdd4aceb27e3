package notionsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/store"
)

func blockText(t *testing.T, b notionsdk.Block) string {
	t.Helper()

	switch b.Type {
	case notionsdk.BlockParagraph:
		return notionsdk.PlainString(b.Paragraph.RichText)
	case notionsdk.BlockHeading2:
		return notionsdk.PlainString(b.Heading2.RichText)
	case notionsdk.BlockHeading3:
		return notionsdk.PlainString(b.Heading3.RichText)
	case notionsdk.BlockBulletedItem:
		return notionsdk.PlainString(b.BulletedListItem.RichText)
	case notionsdk.BlockToDo:
		return notionsdk.PlainString(b.ToDo.RichText)
	default:
		t.Fatalf("block %q carries no text", b.Type)
		return ""
	}
}

func rowCells(t *testing.T, b notionsdk.Block) []string {
	t.Helper()
	require.Equal(t, notionsdk.BlockTableRow, b.Type)

	cells := make([]string, 0, len(b.TableRow.Cells))
	for _, c := range b.TableRow.Cells {
		cells = append(cells, notionsdk.PlainString(c))
	}
	return cells
}

func TestActivityBlocks_Ordering(t *testing.T) {
	a := &store.Activity{
		Title:        "Sprint 12 Retro",
		Summary:      "Went well overall.",
		Facilitator:  "dana",
		Participants: []string{"alice", "bob"},
		Actions: []store.Action{
			{Title: "Fix flaky CI", DueDate: "2026-09-01", Assignee: "bob", Priority: "high"},
		},
	}

	blocks := ActivityBlocks(a)
	require.Len(t, blocks, 10)

	assert.Equal(t, "Exported from RetroSync", blockText(t, blocks[0]))
	assert.Equal(t, "Summary", blockText(t, blocks[1]))
	assert.Equal(t, "Went well overall.", blockText(t, blocks[2]))
	assert.Equal(t, "Facilitator", blockText(t, blocks[3]))
	assert.Equal(t, "dana", blockText(t, blocks[4]))
	assert.Equal(t, "Participants", blockText(t, blocks[5]))
	assert.Equal(t, "alice", blockText(t, blocks[6]))
	assert.Equal(t, "bob", blockText(t, blocks[7]))
	assert.Equal(t, "Action Plan", blockText(t, blocks[8]))

	table := blocks[9]
	require.Equal(t, notionsdk.BlockTable, table.Type)
	assert.Equal(t, 4, table.Table.TableWidth)
	assert.True(t, table.Table.HasColumnHeader)
	require.Len(t, table.Table.Children, 2)
	assert.Equal(t, []string{"Action", "Due Date", "Assigned to", "Priority"}, rowCells(t, table.Table.Children[0]))
	assert.Equal(t, []string{"Fix flaky CI", "2026-09-01", "bob", "high"}, rowCells(t, table.Table.Children[1]))
}

func TestActivityBlocks_EmptyLists(t *testing.T) {
	a := &store.Activity{Title: "Quiet retro", Summary: "Nothing to report."}

	blocks := ActivityBlocks(a)
	require.Len(t, blocks, 7)

	// No facilitator bullet between the two headings.
	assert.Equal(t, "Facilitator", blockText(t, blocks[3]))
	assert.Equal(t, "Participants", blockText(t, blocks[4]))
	assert.Equal(t, "Action Plan", blockText(t, blocks[5]))

	// The table still carries its header row.
	table := blocks[6]
	require.Equal(t, notionsdk.BlockTable, table.Type)
	require.Len(t, table.Table.Children, 1)
	assert.Equal(t, []string{"Action", "Due Date", "Assigned to", "Priority"}, rowCells(t, table.Table.Children[0]))
}

func TestCollectionBlocks(t *testing.T) {
	withSummary := CollectionBlocks(&store.Collection{Title: "Sprint 12", Summary: "Carry-over items"})
	require.Len(t, withSummary, 3)
	assert.Equal(t, "Todo Collection", blockText(t, withSummary[0]))
	assert.Equal(t, "Exported from RetroSync", blockText(t, withSummary[1]))
	assert.Equal(t, "Carry-over items", blockText(t, withSummary[2]))

	bare := CollectionBlocks(&store.Collection{Title: "Sprint 12"})
	assert.Len(t, bare, 2)
}

func TestTodoBlocks(t *testing.T) {
	blocks := TodoBlocks([]store.Todo{
		{Title: "Write report", Completed: true},
		{Title: "Schedule follow-up"},
	})
	require.Len(t, blocks, 4)

	assert.Equal(t, notionsdk.BlockHeading3, blocks[0].Type)
	assert.Equal(t, "Todos", blockText(t, blocks[0]))
	assert.Equal(t, notionsdk.BlockDivider, blocks[1].Type)

	require.Equal(t, notionsdk.BlockToDo, blocks[2].Type)
	assert.Equal(t, "Write report", blockText(t, blocks[2]))
	assert.True(t, blocks[2].ToDo.Checked)
	assert.False(t, blocks[3].ToDo.Checked)

	// An empty collection still gets its heading and divider.
	assert.Len(t, TodoBlocks(nil), 2)
}

func TestTodoRowProperties(t *testing.T) {
	props := todoRowProperties("Write report", true)
	require.Contains(t, props, "Name")
	assert.Equal(t, "Write report", props.TitleValue())
	status := props["Status"]
	assert.Equal(t, true, status.Scalar())

	patch := todoStatusProperties(false)
	assert.NotContains(t, patch, "Name")
	status = patch["Status"]
	assert.Equal(t, false, status.Scalar())
}

func TestTitleProperties(t *testing.T) {
	props := TitleProperties("Sprint 12")
	assert.Equal(t, "Sprint 12", props.TitleValue())
}
