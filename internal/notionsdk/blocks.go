package notionsdk

import (
	"context"
)

const (
	blockChildrenPath = "/blocks/{id}/children"
	blockPath         = "/blocks/{id}"
)

// BlockChildrenResponse is a paged list of child blocks.
type BlockChildrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// AppendBlockChildrenParams is the body of PATCH /blocks/{id}/children.
type AppendBlockChildrenParams struct {
	Children []Block `json:"children"`
}

// GetBlockChildren lists the direct children of a page or block.
func (c *Client) GetBlockChildren(ctx context.Context, blockID string) (resp *BlockChildrenResponse, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", blockID).
		SetSuccessResult(&resp).
		Get(blockChildrenPath)

	if err := handleAPIError(res, err, "get block children"); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendBlockChildren appends blocks to the end of a page or block body.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []Block) (resp *BlockChildrenResponse, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", blockID).
		SetBody(&AppendBlockChildrenParams{Children: children}).
		SetSuccessResult(&resp).
		Patch(blockChildrenPath)

	if err := handleAPIError(res, err, "append block children"); err != nil {
		return nil, err
	}

	return resp, nil
}

// DeleteBlock removes a single block. Database rows are blocks too, so
// reconciliation deletes stale rows through this call.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", blockID).
		Delete(blockPath)

	return handleAPIError(res, err, "delete block")
}
