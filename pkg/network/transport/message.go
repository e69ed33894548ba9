// Package transport implements the object transport of a storage node:
// an HTTP protocol framing CBOR messages, carrying object headers and
// payloads between nodes and serving the client-facing object API.
// Inter-node requests are served strictly by the receiving node, there
// is no forwarding on this layer.
package transport

import (
	"fmt"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// sessionTokenHeader carries the base64 of the CBOR-encoded session
// token on client API requests.
const sessionTokenHeader = "X-Session-Token"

// objectMessage is the wire form of an object with an optional payload.
type objectMessage struct {
	Address     string   `cbor:"address"`
	Owner       string   `cbor:"owner"`
	PayloadSize uint64   `cbor:"payload_size"`
	CreatedAt   uint64   `cbor:"created_at"`
	LastPart    string   `cbor:"last_part,omitempty"`
	Parts       []string `cbor:"parts,omitempty"`
	Payload     []byte   `cbor:"payload,omitempty"`
}

// putRequest is the client API request to store a new object.
type putRequest struct {
	Container string `cbor:"container"`
	Owner     string `cbor:"owner"`
	Payload   []byte `cbor:"payload,omitempty"`
}

// putResponse carries the identifier assigned to a stored object.
type putResponse struct {
	ObjectID string `cbor:"object_id"`
}

// copiesResponse carries an observed copy count.
type copiesResponse struct {
	Copies int `cbor:"copies"`
}

// sessionMessage is the wire form of a session token.
type sessionMessage struct {
	ID    []byte  `cbor:"id"`
	Owner string  `cbor:"owner"`
	Iat   uint64  `cbor:"iat"`
	Exp   uint64  `cbor:"exp"`
	Verbs []uint8 `cbor:"verbs"`

	Object string `cbor:"object,omitempty"`
	Sig    []byte `cbor:"sig,omitempty"`
}

func messageFromObject(obj *object.Object, payload []byte) objectMessage {
	msg := objectMessage{
		Address:     obj.Address().EncodeToString(),
		Owner:       obj.Owner().String(),
		PayloadSize: obj.PayloadSize(),
		CreatedAt:   obj.CreatedAt(),
		Payload:     payload,
	}

	if si := obj.SplitInfo(); si != nil {
		msg.LastPart = si.LastPart.EncodeToString()
		for _, p := range si.Parts {
			msg.Parts = append(msg.Parts, p.EncodeToString())
		}
	}

	return msg
}

func (m objectMessage) toObject() (*object.Object, error) {
	var addr object.Address

	err := addr.DecodeString(m.Address)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}

	obj := object.New(addr, container.OwnerID(m.Owner), m.PayloadSize, m.CreatedAt)

	if m.LastPart != "" {
		si := new(object.SplitInfo)

		err = si.LastPart.DecodeString(m.LastPart)
		if err != nil {
			return nil, fmt.Errorf("decode last part id: %w", err)
		}

		for _, p := range m.Parts {
			var id object.ID

			err = id.DecodeString(p)
			if err != nil {
				return nil, fmt.Errorf("decode part id: %w", err)
			}

			si.Parts = append(si.Parts, id)
		}

		obj.SetSplitInfo(si)
	}

	return obj, nil
}

func messageFromToken(t *session.Token) sessionMessage {
	verbs := t.Verbs()

	msg := sessionMessage{
		ID:    t.ID(),
		Owner: t.Owner().String(),
		Iat:   t.IssuedAt(),
		Exp:   t.ExpiresAt(),
		Verbs: make([]uint8, 0, len(verbs)),
		Sig:   t.Signature(),
	}

	for _, v := range verbs {
		msg.Verbs = append(msg.Verbs, uint8(v))
	}

	if addr := t.ObjectScope(); addr != nil {
		msg.Object = addr.EncodeToString()
	}

	return msg
}

func (m sessionMessage) toToken() (*session.Token, error) {
	verbs := make([]session.Verb, 0, len(m.Verbs))
	for _, v := range m.Verbs {
		verbs = append(verbs, session.Verb(v))
	}

	t := session.NewToken(m.ID, container.OwnerID(m.Owner), m.Iat, m.Exp, verbs)

	if m.Object != "" {
		var addr object.Address

		err := addr.DecodeString(m.Object)
		if err != nil {
			return nil, fmt.Errorf("decode token object scope: %w", err)
		}

		t.LimitByObject(addr)
	}

	if len(m.Sig) > 0 {
		t.SetSignature(m.Sig)
	}

	return t, nil
}
