package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
	objectsvc "github.com/stornet-dev/stornet-node/pkg/services/object"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// ObjectBackend is the node-local side the transport server hands
// inter-node requests to.
type ObjectBackend interface {
	// PutLocal persists an object received from another node.
	PutLocal(obj *object.Object, payload []byte) error

	// DeleteLocal removes the local copy of the object.
	DeleteLocal(addr object.Address) error

	// HeadLocal serves a direct existence probe from local storage.
	HeadLocal(addr object.Address) (*object.Object, error)
}

// ClientBackend executes client-facing object operations: requests go
// through session authorization and placement resolution instead of
// acting on local storage directly.
type ClientBackend interface {
	Put(ctx context.Context, prm *objectsvc.PutPrm) (object.ID, error)
	Delete(ctx context.Context, prm *objectsvc.DeletePrm) error
	Head(ctx context.Context, prm *objectsvc.HeadPrm) (*object.Object, error)
	CountCopies(ctx context.Context, addr object.Address) (int, error)
}

// Server is the http.Handler of the object transport.
type Server struct {
	backend ObjectBackend

	client ClientBackend

	log *zap.Logger
}

// ServerOption is an option of the Server constructor.
type ServerOption func(*Server)

// WithClientBackend serves the client-facing object API in addition to
// the inter-node routes.
func WithClientBackend(v ClientBackend) ServerOption {
	return func(s *Server) {
		s.client = v
	}
}

// NewServer creates the transport server over the backend.
func NewServer(backend ObjectBackend, log *zap.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = zap.L()
	}

	s := &Server{
		backend: backend,
		log:     log.With(zap.String("component", "Object Transport")),
	}

	for i := range opts {
		opts[i](s)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const (
		nodePrefix   = "/v1/objects"
		clientPrefix = "/v1/client/objects"
	)

	switch {
	case strings.HasPrefix(r.URL.Path, clientPrefix):
		if s.client == nil {
			http.NotFound(w, r)
			return
		}

		s.serveClient(w, r, strings.Trim(strings.TrimPrefix(r.URL.Path, clientPrefix), "/"))
	case strings.HasPrefix(r.URL.Path, nodePrefix):
		s.serveNode(w, r, strings.Trim(strings.TrimPrefix(r.URL.Path, nodePrefix), "/"))
	default:
		http.NotFound(w, r)
	}
}

// serveNode routes inter-node (replication and probe) requests.
func (s *Server) serveNode(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case r.Method == http.MethodPut && rest == "":
		s.handlePut(w, r)
	case r.Method == http.MethodDelete:
		s.handleDelete(w, r, rest)
	case r.Method == http.MethodGet && strings.HasSuffix(rest, "/header"):
		s.handleHead(w, r, strings.TrimSuffix(rest, "/header"))
	default:
		http.Error(w, "unsupported request", http.StatusMethodNotAllowed)
	}
}

// serveClient routes client API requests.
func (s *Server) serveClient(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case r.Method == http.MethodPost && rest == "":
		s.handleClientPut(w, r)
	case r.Method == http.MethodDelete:
		s.handleClientDelete(w, r, rest)
	case r.Method == http.MethodGet && strings.HasSuffix(rest, "/header"):
		s.handleClientHead(w, r, strings.TrimSuffix(rest, "/header"))
	case r.Method == http.MethodGet && strings.HasSuffix(rest, "/copies"):
		s.handleClientCopies(w, r, strings.TrimSuffix(rest, "/copies"))
	default:
		http.Error(w, "unsupported request", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var msg objectMessage

	err := cbor.NewDecoder(r.Body).Decode(&msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	obj, err := msg.toObject()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.backend.PutLocal(obj, msg.Payload)
	if err != nil {
		s.log.Error("could not persist replicated object",
			zap.Stringer("object", obj.Address()),
			zap.Error(err),
		)

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, rawAddr string) {
	addr, ok := s.decodeAddress(w, rawAddr)
	if !ok {
		return
	}

	err := s.backend.DeleteLocal(addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHead(w http.ResponseWriter, r *http.Request, rawAddr string) {
	addr, ok := s.decodeAddress(w, rawAddr)
	if !ok {
		return
	}

	obj, err := s.backend.HeadLocal(addr)

	switch {
	case err == nil:
		s.respond(w, addr, messageFromObject(obj, nil))
	case errors.Is(err, localstore.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleClientPut(w http.ResponseWriter, r *http.Request) {
	var req putRequest

	err := cbor.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var cnr container.ID

	err = cnr.DecodeString(req.Container)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tok, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	id, err := s.client.Put(r.Context(), new(objectsvc.PutPrm).
		WithContainer(cnr).
		WithOwner(container.OwnerID(req.Owner)).
		WithPayload(req.Payload).
		WithSession(tok),
	)
	if err != nil {
		s.clientError(w, err)
		return
	}

	s.respond(w, cnr, putResponse{ObjectID: id.EncodeToString()})
}

func (s *Server) handleClientDelete(w http.ResponseWriter, r *http.Request, rawAddr string) {
	addr, ok := s.decodeAddress(w, rawAddr)
	if !ok {
		return
	}

	tok, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	err := s.client.Delete(r.Context(), new(objectsvc.DeletePrm).
		WithAddress(addr).
		WithSession(tok),
	)
	if err != nil {
		s.clientError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleClientHead(w http.ResponseWriter, r *http.Request, rawAddr string) {
	addr, ok := s.decodeAddress(w, rawAddr)
	if !ok {
		return
	}

	tok, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	obj, err := s.client.Head(r.Context(), new(objectsvc.HeadPrm).
		WithAddress(addr).
		WithSession(tok),
	)
	if err != nil {
		s.clientError(w, err)
		return
	}

	s.respond(w, addr, messageFromObject(obj, nil))
}

func (s *Server) handleClientCopies(w http.ResponseWriter, r *http.Request, rawAddr string) {
	addr, ok := s.decodeAddress(w, rawAddr)
	if !ok {
		return
	}

	n, err := s.client.CountCopies(r.Context(), addr)
	if err != nil {
		s.clientError(w, err)
		return
	}

	s.respond(w, addr, copiesResponse{Copies: n})
}

// sessionFromRequest restores the session token attached to a client
// request, nil when the request carries none. A false second return
// means the token was malformed and the response is already written.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Token, bool) {
	rawHeader := r.Header.Get(sessionTokenHeader)
	if rawHeader == "" {
		return nil, true
	}

	raw, err := base64.StdEncoding.DecodeString(rawHeader)
	if err != nil {
		http.Error(w, "malformed session token", http.StatusBadRequest)
		return nil, false
	}

	var msg sessionMessage

	err = cbor.Unmarshal(raw, &msg)
	if err != nil {
		http.Error(w, "malformed session token", http.StatusBadRequest)
		return nil, false
	}

	tok, err := msg.toToken()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return tok, true
}

// clientError maps operation errors of the client API onto HTTP
// statuses: authorization denials become 403, a missing object 404.
func (s *Server) clientError(w http.ResponseWriter, err error) {
	switch {
	case session.IsDenial(err):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, localstore.ErrNotFound), client.IsErrObjectNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) respond(w http.ResponseWriter, subject interface{ String() string }, msg interface{}) {
	w.Header().Set("Content-Type", "application/cbor")

	err := cbor.NewEncoder(w).Encode(msg)
	if err != nil {
		s.log.Error("could not encode response",
			zap.String("subject", subject.String()),
			zap.Error(err),
		)
	}
}

func (s *Server) decodeAddress(w http.ResponseWriter, raw string) (object.Address, bool) {
	var addr object.Address

	err := addr.DecodeString(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return addr, false
	}

	return addr, true
}
