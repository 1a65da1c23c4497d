package handler

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// page reads from (default 0) and size (default 10).
func page(q url.Values) (model.Page, error) {
	from, err := intParam(q, "from", 0)
	if err != nil {
		return model.Page{}, err
	}
	size, err := intParam(q, "size", model.DefaultPageSize)
	if err != nil {
		return model.Page{}, err
	}
	return model.NewPage(from, size)
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperror.BadRequest("%s must be an integer", name)
	}
	return n, nil
}

// list accepts both repeated parameters and comma-separated values.
func list(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func boolParam(q url.Values, name string) (*bool, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperror.BadRequest("%s must be a boolean", name)
	}
	return &b, nil
}

func dateParam(q url.Values, name string) (*time.Time, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := model.ParseDateTime(v)
	if err != nil {
		return nil, apperror.BadRequest("%s: %v", name, err)
	}
	return &t, nil
}

// dateRange reads rangeStart and rangeEnd.
func dateRange(q url.Values) (start, end *time.Time, err error) {
	if start, err = dateParam(q, "rangeStart"); err != nil {
		return nil, nil, err
	}
	if end, err = dateParam(q, "rangeEnd"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// clientIP strips the port from RemoteAddr, which RealIP has already
// replaced with the forwarded address when one is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
