package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/internal/valid"
)

type (
	// flexBool accepts true, false and their string forms
	flexBool bool
	// flexInt accepts numbers and numeric strings, anything else is zero
	flexInt int64

	toolForm struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		URL         string   `json:"url"`
		IconName    string   `json:"iconName"`
		IconURL     string   `json:"iconUrl"`
		CategoryID  flexInt  `json:"categoryId"`
		Popular     flexBool `json:"popular"`
		IsNew       flexBool `json:"isNew"`

		iconFile *iconUpload
	}

	iconUpload struct {
		ext     string
		content []byte
	}
)

const (
	maxToolBody  = 1 << 20
	maxIconBytes = 2 << 20
)

var errIconTooLarge = catalog.ValidationError{
	Message: "Invalid tool data",
	Fields:  []valid.FieldError{{Field: "iconFile", Message: "must be at most 2 MiB"}},
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case bool:
		*b = flexBool(v)
	case string:
		*b = flexBool(v == "true")
	default:
		*b = false
	}
	return nil
}

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*i = flexInt(v)
	case string:
		*i = parseFlexInt(v)
	default:
		*i = 0
	}
	return nil
}

func parseFlexInt(s string) flexInt {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return flexInt(n)
}

func readToolForm(w http.ResponseWriter, r *http.Request) (toolForm, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "multipart/form-data":
		return readMultipartTool(w, r)
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxToolBody)
		if err := r.ParseForm(); err != nil {
			return toolForm{}, err
		}
		return formValues(r), nil
	}
	var f toolForm
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToolBody)).Decode(&f)
	return f, err
}

func readMultipartTool(w http.ResponseWriter, r *http.Request) (toolForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxToolBody+maxIconBytes)
	if err := r.ParseMultipartForm(maxToolBody); err != nil {
		return toolForm{}, err
	}
	f := formValues(r)
	file, header, err := r.FormFile("iconFile")
	if err == http.ErrMissingFile {
		return f, nil
	} else if err != nil {
		return toolForm{}, err
	}
	defer file.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(file, maxIconBytes+1)); err != nil {
		return toolForm{}, fmt.Errorf("unable to read icon file, cause %w", err)
	}
	if buf.Len() > maxIconBytes {
		return toolForm{}, errIconTooLarge
	}
	f.iconFile = &iconUpload{
		ext:     strings.TrimPrefix(path.Ext(header.Filename), "."),
		content: buf.Bytes(),
	}
	return f, nil
}

func formValues(r *http.Request) toolForm {
	return toolForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		URL:         r.FormValue("url"),
		IconName:    r.FormValue("iconName"),
		IconURL:     r.FormValue("iconUrl"),
		CategoryID:  parseFlexInt(r.FormValue("categoryId")),
		Popular:     flexBool(r.FormValue("popular") == "true"),
		IsNew:       flexBool(r.FormValue("isNew") == "true"),
	}
}

func (i *iconUpload) dataURL() string {
	ext := i.ext
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("data:image/%v;base64,%v", ext, base64.StdEncoding.EncodeToString(i.content))
}

func (f toolForm) newTool() catalog.NewTool {
	return catalog.NewTool{
		Name:        f.Name,
		Description: f.Description,
		URL:         f.URL,
		IconName:    f.IconName,
		IconURL:     f.IconURL,
		CategoryID:  int64(f.CategoryID),
		Popular:     bool(f.Popular),
		IsNew:       bool(f.IsNew),
	}
}
