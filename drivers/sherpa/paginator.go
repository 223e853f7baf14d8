package sherpa

import (
	"context"
	"fmt"
	"strconv"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/types"
)

// Paginator lazily walks one stream's token sequence. Not restartable: to
// resume from a persisted cursor a fresh Paginator is constructed.
type Paginator struct {
	client     *Client
	descriptor serviceDescriptor
	stream     types.StreamInterface
	token      int64
	pageSize   int

	page *types.Page
	err  error
	done bool

	seenParents map[string]struct{}
}

func newPaginator(client *Client, stream types.StreamInterface, startToken int64, pageSize int) (*Paginator, error) {
	descriptor, found := serviceDescriptors[stream.Name()]
	if !found {
		return nil, fmt.Errorf("stream %s has no service binding", stream.Name())
	}
	p := &Paginator{
		client:     client,
		descriptor: descriptor,
		stream:     stream,
		token:      startToken,
		pageSize:   pageSize,
	}
	if descriptor.Detail != nil && descriptor.Detail.DedupeParent {
		p.seenParents = map[string]struct{}{}
	}
	return p, nil
}

// Next fetches the following page. Returns false when the sequence is
// exhausted or failed; check Err afterwards.
func (p *Paginator) Next(ctx context.Context) bool {
	if p.done || p.err != nil {
		return false
	}

	params := []Param{{Name: "token", Value: strconv.FormatInt(p.token, 10)}}
	if p.descriptor.CountParam != "" {
		params = append(params, Param{Name: p.descriptor.CountParam, Value: strconv.Itoa(p.pageSize)})
	}

	response, err := p.client.CallService(ctx, p.descriptor.Service, params, p.descriptor.List)
	if err != nil {
		p.err = err
		return false
	}

	items := response.Items(p.descriptor.ItemsKey)
	if len(items) == 0 {
		p.done = true
		return false
	}

	maxToken := p.token
	records := make([]types.Record, 0, len(items))
	for _, item := range items {
		record := normalizeItem(item)
		token, ok := record[constants.TokenCursorField].(int64)
		if !ok {
			p.err = fmt.Errorf("%w: service %s returned token %v", ErrInvalidToken, p.descriptor.Service, record[constants.TokenCursorField])
			return false
		}
		if token > maxToken {
			maxToken = token
		}
		records = append(records, record)
	}

	// the backend promises every returned token exceeds the requested one; a
	// page that does not advance would loop forever
	if maxToken <= p.token {
		p.err = fmt.Errorf("%w: service %s returned no token past %d", ErrPaginationStalled, p.descriptor.Service, p.token)
		return false
	}

	if p.descriptor.Detail != nil {
		records, err = p.resolveDetails(ctx, records)
		if err != nil {
			p.err = err
			return false
		}
	}

	p.page = &types.Page{Records: records, NextToken: maxToken}
	p.token = maxToken
	return true
}

func (p *Paginator) Page() *types.Page {
	return p.page
}

func (p *Paginator) Err() error {
	return p.err
}

// resolveDetails swaps parent token records for their detail counterparts,
// one detail call per parent, preserving parent order. The parent token is
// stamped onto each detail record so the stream stays resumable.
func (p *Paginator) resolveDetails(ctx context.Context, parents []types.Record) ([]types.Record, error) {
	detail := p.descriptor.Detail
	records := make([]types.Record, 0, len(parents))

	for _, parent := range parents {
		key, _ := parent[detail.ParentField].(string)
		if key == "" {
			if detail.SkipEmptyParent {
				continue
			}
			return nil, fmt.Errorf("stream %s parent record misses %s", p.stream.Name(), detail.ParentField)
		}
		if p.seenParents != nil {
			if _, seen := p.seenParents[key]; seen {
				continue
			}
			p.seenParents[key] = struct{}{}
		}

		response, err := p.client.CallService(ctx, detail.Service, []Param{{Name: detail.ParamName, Value: key}}, nil)
		if err != nil {
			return nil, err
		}
		value, ok := response.Value.(map[string]any)
		if !ok {
			continue // backend knows no detail for this key
		}

		record := normalizeItem(value)
		if _, ok := record[constants.TokenCursorField].(int64); !ok {
			record[constants.TokenCursorField] = parent[constants.TokenCursorField]
		}
		records = append(records, record)
	}
	return records, nil
}
