package notionsync

import (
	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/store"
)

// attributionText opens every page this app writes, so users can tell
// app-managed documents from hand-written ones.
const attributionText = "Exported from RetroSync"

// actionTableWidth is the fixed action plan column count.
const actionTableWidth = 4

// ActivityBlocks compiles an activity into its page body. Ordering is
// deterministic: attribution, summary, facilitator, participants in
// insertion order, then the action plan table with a fixed header row.
// Empty participant or action lists produce headings with no items.
func ActivityBlocks(a *store.Activity) []notionsdk.Block {
	blocks := []notionsdk.Block{
		notionsdk.NewParagraph(attributionText),
		notionsdk.NewHeading2("Summary"),
		notionsdk.NewParagraph(a.Summary),
		notionsdk.NewHeading2("Facilitator"),
	}

	if a.Facilitator != "" {
		blocks = append(blocks, notionsdk.NewBulletedItem(a.Facilitator))
	}

	blocks = append(blocks, notionsdk.NewHeading2("Participants"))
	for _, p := range a.Participants {
		blocks = append(blocks, notionsdk.NewBulletedItem(p))
	}

	blocks = append(blocks, notionsdk.NewHeading2("Action Plan"))

	rows := make([]notionsdk.Block, 0, len(a.Actions)+1)
	rows = append(rows, notionsdk.NewTableRow("Action", "Due Date", "Assigned to", "Priority"))
	for _, action := range a.Actions {
		rows = append(rows, notionsdk.NewTableRow(action.Title, action.DueDate, action.Assignee, action.Priority))
	}
	blocks = append(blocks, notionsdk.NewTable(actionTableWidth, rows...))

	return blocks
}

// CollectionBlocks compiles a collection's page body.
func CollectionBlocks(c *store.Collection) []notionsdk.Block {
	blocks := []notionsdk.Block{
		notionsdk.NewHeading2("Todo Collection"),
		notionsdk.NewParagraph(attributionText),
	}
	if c.Summary != "" {
		blocks = append(blocks, notionsdk.NewParagraph(c.Summary))
	}
	return blocks
}

// TodoBlocks compiles todos into a checkbox list body, used when a
// collection is exported to a plain page rather than a database.
func TodoBlocks(todos []store.Todo) []notionsdk.Block {
	blocks := []notionsdk.Block{
		notionsdk.NewHeading3("Todos"),
		notionsdk.NewDivider(),
	}
	for _, t := range todos {
		blocks = append(blocks, notionsdk.NewToDo(t.Title, t.Completed))
	}
	return blocks
}

// TitleProperties builds the title-only property patch for a page.
func TitleProperties(title string) notionsdk.Properties {
	return notionsdk.Properties{
		"title": notionsdk.NewTitleProperty(title),
	}
}

// todoRowProperties builds the properties of one database row backing a
// todo. New databases always name the title column "Name".
func todoRowProperties(title string, completed bool) notionsdk.Properties {
	return notionsdk.Properties{
		"Name":   notionsdk.NewTitleProperty(title),
		"Status": notionsdk.NewCheckboxProperty(completed),
	}
}

// todoStatusProperties builds the checkbox-only patch for a row update.
func todoStatusProperties(completed bool) notionsdk.Properties {
	return notionsdk.Properties{
		"Status": notionsdk.NewCheckboxProperty(completed),
	}
}
