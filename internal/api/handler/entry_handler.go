package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

const flashCookie = "flash"

// flashKinds are the query parameters the entry view turns into notices,
// in display order.
var flashKinds = []string{"success", "error"}

type EntryHandler struct {
	secure bool
}

func NewEntryHandler(secureCookies bool) *EntryHandler {
	return &EntryHandler{secure: secureCookies}
}

// Entry serves the unauthenticated entry view. Messages passed as success
// or error query parameters (e.g. by the e-mail confirmation redirect) are
// moved into a one-shot cookie and the URL is cleaned with a redirect; the
// next load shows them once.
//
// @Summary      Entry view
// @Tags         entry
// @Produce      json
// @Param        success  query     string  false  "Success message"
// @Param        error    query     string  false  "Error message"
// @Success      200      {object}  entryResponse
// @Success      303
// @Router       / [get]
func (h *EntryHandler) Entry(c echo.Context) error {
	q := c.QueryParams()
	flash := url.Values{}
	for _, kind := range flashKinds {
		if msg := q.Get(kind); msg != "" {
			flash.Set(kind, msg)
		}
	}

	if len(flash) > 0 {
		c.SetCookie(h.cookie(flash.Encode(), 60))
		return c.Redirect(http.StatusSeeOther, c.Request().URL.Path)
	}

	resp := entryResponse{View: "entry"}
	if ck, err := c.Cookie(flashCookie); err == nil {
		c.SetCookie(h.cookie("", -1))
		if stored, err := url.ParseQuery(ck.Value); err == nil {
			for _, kind := range flashKinds {
				if msg := stored.Get(kind); msg != "" {
					resp.Notices = append(resp.Notices, notice{Kind: kind, Message: msg})
				}
			}
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *EntryHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
