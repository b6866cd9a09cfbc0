package api

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/pkg/errors"

	"github.com/umputun/social-feed/app/auth"
	"github.com/umputun/social-feed/app/models"
	"github.com/umputun/social-feed/app/proc"
)

// statusUpdateReq is the body of POST /feeditem, pointers used to detect missing fields
type statusUpdateReq struct {
	UserID   *models.ID `json:"userId"`
	Location string     `json:"location"`
	Contents *string    `json:"contents"`
	Image    string     `json:"image"`
}

// commentReq is the body of POST /feeditem/{itemID}/comments
type commentReq struct {
	Author   *models.ID `json:"author"`
	Contents *string    `json:"contents"`
	PostDate *int64     `json:"postDate"`
}

// GET /user/{userID}/feed
func (s *Server) getFeedCtrl(w http.ResponseWriter, r *http.Request) {
	userID := models.ID(chi.URLParam(r, "userID"))
	if !auth.Authorize(r.Header.Get("Authorization"), userID) {
		s.sendError(w, r, errors.Wrapf(models.ErrUnauthorized, "feed of %s", userID), http.StatusForbidden)
		return
	}

	feed, err := s.Processor.GetFeed(r.Context(), userID)
	if err != nil {
		s.sendError(w, r, err, http.StatusForbidden)
		return
	}
	render.JSON(w, r, feed)
}

// POST /feeditem {"userId": "4", "location": "...", "contents": "...", "image": "..."}
func (s *Server) postStatusUpdateCtrl(w http.ResponseWriter, r *http.Request) {
	req := statusUpdateReq{}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.sendError(w, r, errors.Wrapf(models.ErrBadRequest, "can't decode status update, %v", err), http.StatusUnauthorized)
		return
	}
	if req.UserID == nil || req.Contents == nil {
		s.sendError(w, r, errors.Wrap(models.ErrBadRequest, "userId and contents required"), http.StatusUnauthorized)
		return
	}
	if !auth.Authorize(r.Header.Get("Authorization"), *req.UserID) {
		s.sendError(w, r, errors.Wrapf(models.ErrUnauthorized, "post as %s", *req.UserID), http.StatusUnauthorized)
		return
	}

	item, err := s.Processor.PostStatusUpdate(r.Context(), *req.UserID, proc.StatusUpdateReq{
		UserID:   *req.UserID,
		Location: req.Location,
		Text:     *req.Contents,
		Image:    req.Image,
	})
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/feeditem/%s", item.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// PUT /feeditem/{itemID}/content, body is the new text
func (s *Server) updateTextCtrl(w http.ResponseWriter, r *http.Request) {
	itemID := models.ID(chi.URLParam(r, "itemID"))
	text, err := readText(r)
	if err != nil {
		// ownership checked before the body, non-author gets 401 for any payload
		if authErr := s.Processor.CheckAuthor(r.Context(), actor(r), itemID); authErr != nil {
			s.sendError(w, r, authErr, http.StatusUnauthorized)
			return
		}
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}

	item, err := s.Processor.UpdateText(r.Context(), actor(r), itemID, text)
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}
	render.JSON(w, r, item)
}

// DELETE /feeditem/{itemID}
func (s *Server) deleteFeedItemCtrl(w http.ResponseWriter, r *http.Request) {
	itemID := models.ID(chi.URLParam(r, "itemID"))
	if err := s.Processor.DeleteFeedItem(r.Context(), actor(r), itemID); err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// PUT /feeditem/{itemID}/likelist/{userID}
func (s *Server) likeFeedItemCtrl(w http.ResponseWriter, r *http.Request) {
	s.itemLike(w, r, true)
}

// DELETE /feeditem/{itemID}/likelist/{userID}
func (s *Server) unlikeFeedItemCtrl(w http.ResponseWriter, r *http.Request) {
	s.itemLike(w, r, false)
}

func (s *Server) itemLike(w http.ResponseWriter, r *http.Request, like bool) {
	itemID, userID := models.ID(chi.URLParam(r, "itemID")), models.ID(chi.URLParam(r, "userID"))
	if !auth.Authorize(r.Header.Get("Authorization"), userID) {
		s.sendError(w, r, errors.Wrapf(models.ErrUnauthorized, "likes of %s", userID), http.StatusUnauthorized)
		return
	}

	fn := s.Processor.LikeFeedItem
	if !like {
		fn = s.Processor.UnlikeFeedItem
	}
	likes, err := fn(r.Context(), userID, itemID, userID)
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}
	render.JSON(w, r, likes)
}

// POST /feeditem/{itemID}/comments {"author": "4", "contents": "...", "postDate": 1453690800000}
func (s *Server) postCommentCtrl(w http.ResponseWriter, r *http.Request) {
	itemID := models.ID(chi.URLParam(r, "itemID"))
	req := commentReq{}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.sendError(w, r, errors.Wrapf(models.ErrBadRequest, "can't decode comment, %v", err), http.StatusUnauthorized)
		return
	}
	if req.Author == nil || req.Contents == nil || req.PostDate == nil {
		s.sendError(w, r, errors.Wrap(models.ErrBadRequest, "author, contents and postDate required"), http.StatusUnauthorized)
		return
	}
	if !auth.Authorize(r.Header.Get("Authorization"), *req.Author) {
		s.sendError(w, r, errors.Wrapf(models.ErrUnauthorized, "comment as %s", *req.Author), http.StatusUnauthorized)
		return
	}

	item, index, err := s.Processor.PostComment(r.Context(), *req.Author, itemID,
		proc.CommentReq{Author: *req.Author, Text: *req.Contents, PostDate: *req.PostDate})
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/feeditem/%s/comments/%d", itemID, index))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// PUT /feeditem/{itemID}/comments/{index}/likelist/{userID}
func (s *Server) likeCommentCtrl(w http.ResponseWriter, r *http.Request) {
	s.commentLike(w, r, true)
}

// DELETE /feeditem/{itemID}/comments/{index}/likelist/{userID}
func (s *Server) unlikeCommentCtrl(w http.ResponseWriter, r *http.Request) {
	s.commentLike(w, r, false)
}

func (s *Server) commentLike(w http.ResponseWriter, r *http.Request, like bool) {
	itemID, userID := models.ID(chi.URLParam(r, "itemID")), models.ID(chi.URLParam(r, "userID"))
	if !auth.Authorize(r.Header.Get("Authorization"), userID) {
		s.sendError(w, r, errors.Wrapf(models.ErrUnauthorized, "comment likes of %s", userID), http.StatusUnauthorized)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.sendError(w, r, errors.Wrapf(models.ErrBadRequest, "bad comment index %q", chi.URLParam(r, "index")),
			http.StatusUnauthorized)
		return
	}

	fn := s.Processor.LikeComment
	if !like {
		fn = s.Processor.UnlikeComment
	}
	comment, err := fn(r.Context(), userID, itemID, index, userID)
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}
	render.JSON(w, r, comment)
}

// POST /search, body is the query text
func (s *Server) searchCtrl(w http.ResponseWriter, r *http.Request) {
	user := actor(r)
	if user == auth.InvalidID {
		s.sendError(w, r, errors.Wrap(models.ErrUnauthorized, "search without valid token"), http.StatusUnauthorized)
		return
	}
	query, err := readText(r)
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}

	items, err := s.Processor.Search(r.Context(), user, query)
	if err != nil {
		s.sendError(w, r, err, http.StatusUnauthorized)
		return
	}
	render.JSON(w, r, items)
}

// sendError maps error taxonomy to http status. Unauthorized status differs per endpoint.
// Details are logged, client gets a generic message only.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error, unauthorizedStatus int) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		rest.SendErrorJSON(w, r, log.Default(), unauthorizedStatus, err, "unauthorized")
	case errors.Is(err, models.ErrNotFound):
		rest.SendErrorJSON(w, r, log.Default(), http.StatusNotFound, err, "not found")
	case errors.Is(err, models.ErrBadRequest):
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "bad request")
	default:
		rest.SendErrorJSON(w, r, log.Default(), http.StatusInternalServerError, err, "internal error")
	}
}

// actor returns the user id from the request's bearer token, auth.InvalidID if not valid
func actor(r *http.Request) models.ID {
	return auth.UserFromHeader(r.Header.Get("Authorization"))
}

// readText gets raw text body. JSON body accepted only if it is a JSON string.
func readText(r *http.Request) (string, error) {
	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return "", errors.Wrapf(models.ErrBadRequest, "can't read body, %v", err)
	}
	if render.GetRequestContentType(r) != render.ContentTypeJSON {
		return string(data), nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return "", errors.Wrap(models.ErrBadRequest, "body is not a string")
	}
	return text, nil
}
