package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/network"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// Client implements the remote node client interface of
// pkg/core/client over the HTTP object transport, and additionally
// exposes the client-facing object API of a node.
type Client struct {
	http *http.Client
}

// NewClient creates a transport client with the given per-request
// timeout cap.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func nodeURL(node netmap.NodeInfo) (string, error) {
	var addr network.Address

	err := addr.FromString(node.NetworkEndpoint())
	if err != nil {
		return "", fmt.Errorf("parse node endpoint: %w", err)
	}

	return "http://" + addr.HostAddr(), nil
}

// PutObject implements client.Client.
func (c *Client) PutObject(ctx context.Context, node netmap.NodeInfo, obj *object.Object, payload []byte) error {
	base, err := nodeURL(node)
	if err != nil {
		return err
	}

	body, err := cbor.Marshal(messageFromObject(obj, payload))
	if err != nil {
		return fmt.Errorf("marshal object message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, base+"/v1/objects", bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/cbor")

	return c.do(req, nil)
}

// DeleteObject implements client.Client.
func (c *Client) DeleteObject(ctx context.Context, node netmap.NodeInfo, addr object.Address) error {
	base, err := nodeURL(node)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, base+"/v1/objects/"+addr.EncodeToString(), nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// HeadObject implements client.Client. The request is a direct
// existence probe: the responding node consults its local storage only.
func (c *Client) HeadObject(ctx context.Context, node netmap.NodeInfo, addr object.Address) (*object.Object, error) {
	base, err := nodeURL(node)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v1/objects/"+addr.EncodeToString()+"/header", nil)
	if err != nil {
		return nil, err
	}

	var msg objectMessage

	err = c.do(req, &msg)
	if err != nil {
		return nil, err
	}

	return msg.toObject()
}

// Put stores a new object in the container through the client API of
// the node. The node resolves the placement and propagates the object,
// the caller only learns the assigned identifier. A nil token skips
// session authorization.
func (c *Client) Put(ctx context.Context, node netmap.NodeInfo, cnr container.ID, owner container.OwnerID, payload []byte, tok *session.Token) (object.ID, error) {
	base, err := nodeURL(node)
	if err != nil {
		return object.ID{}, err
	}

	body, err := cbor.Marshal(putRequest{
		Container: cnr.EncodeToString(),
		Owner:     owner.String(),
		Payload:   payload,
	})
	if err != nil {
		return object.ID{}, fmt.Errorf("marshal put request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/client/objects", bytes.NewReader(body))
	if err != nil {
		return object.ID{}, err
	}

	req.Header.Set("Content-Type", "application/cbor")

	err = attachToken(req, tok)
	if err != nil {
		return object.ID{}, err
	}

	var resp putResponse

	err = c.do(req, &resp)
	if err != nil {
		return object.ID{}, err
	}

	var id object.ID

	err = id.DecodeString(resp.ObjectID)
	if err != nil {
		return object.ID{}, fmt.Errorf("decode assigned object id: %w", err)
	}

	return id, nil
}

// Delete removes the object through the client API of the node.
func (c *Client) Delete(ctx context.Context, node netmap.NodeInfo, addr object.Address, tok *session.Token) error {
	base, err := nodeURL(node)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, base+"/v1/client/objects/"+addr.EncodeToString(), nil)
	if err != nil {
		return err
	}

	err = attachToken(req, tok)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// Head requests the object header through the client API of the node.
// Unlike HeadObject, the node falls back to the placement targets when
// it does not hold the object itself.
func (c *Client) Head(ctx context.Context, node netmap.NodeInfo, addr object.Address, tok *session.Token) (*object.Object, error) {
	base, err := nodeURL(node)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v1/client/objects/"+addr.EncodeToString()+"/header", nil)
	if err != nil {
		return nil, err
	}

	err = attachToken(req, tok)
	if err != nil {
		return nil, err
	}

	var msg objectMessage

	err = c.do(req, &msg)
	if err != nil {
		return nil, err
	}

	return msg.toObject()
}

// Copies asks the node to verify how many copies of the object the
// network currently holds.
func (c *Client) Copies(ctx context.Context, node netmap.NodeInfo, addr object.Address) (int, error) {
	base, err := nodeURL(node)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v1/client/objects/"+addr.EncodeToString()+"/copies", nil)
	if err != nil {
		return 0, err
	}

	var resp copiesResponse

	err = c.do(req, &resp)
	if err != nil {
		return 0, err
	}

	return resp.Copies, nil
}

func attachToken(req *http.Request, tok *session.Token) error {
	if tok == nil {
		return nil
	}

	raw, err := cbor.Marshal(messageFromToken(tok))
	if err != nil {
		return fmt.Errorf("marshal session token: %w", err)
	}

	req.Header.Set(sessionTokenHeader, base64.StdEncoding.EncodeToString(raw))

	return nil
}

// do executes the request and maps the response status onto the
// canonical error space: 404 becomes a NOT_FOUND status error so that
// client.IsErrObjectNotFound recognizes it on the caller side.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return status.Error(codes.NotFound, "object not found")
	case resp.StatusCode != http.StatusOK:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("unexpected status %s: %s", resp.Status, raw)
	}

	if out != nil {
		return cbor.NewDecoder(resp.Body).Decode(out)
	}

	return nil
}
