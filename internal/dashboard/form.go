package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profileplus/internal/extract"
	"profileplus/internal/profiles"
)

// multipartOverhead is allowed on top of the file limit for the other form
// parts.
const multipartOverhead = 1 << 20

var (
	errBadBody         = errors.New("invalid request body")
	errFileTooLarge    = errors.New("file too large")
	errUnsupportedFile = errors.New("unsupported file type")
)

// profileRequest is the editable part of a profile.
type profileRequest struct {
	Name              string        `json:"name"`
	Role              string        `json:"role"`
	Location          string        `json:"location"`
	AboutMe           string        `json:"aboutMe"`
	ExperienceSummary string        `json:"experienceSummary"`
	Skills            []string      `json:"skills"`
	Tier              profiles.Tier `json:"tier"`
}

func (r profileRequest) apply(p profiles.Profile) profiles.Profile {
	p.Name = r.Name
	p.Role = r.Role
	p.Location = r.Location
	p.AboutMe = r.AboutMe
	p.ExperienceSummary = r.ExperienceSummary
	p.Skills = profiles.CleanSkills(r.Skills)
	p.Tier = r.Tier
	if p.Tier == "" {
		p.Tier = profiles.TierFree
	}
	return p
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// readProfileRequest decodes a JSON body, or a multipart form with either
// a "profile" JSON part or one form field per profile field. The optional
// file part named fileField is returned as an attachment.
func readProfileRequest(c *gin.Context, fileField string, maxFile int64, allowed ...string) (profileRequest, *profiles.Attachment, error) {
	var req profileRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, errBadBody
		}
		return req, nil, nil
	}

	if err := parseMultipart(c, maxFile); err != nil {
		return req, nil, err
	}
	if raw := c.PostForm("profile"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return req, nil, errBadBody
		}
	} else {
		req = profileRequest{
			Name:              c.PostForm("name"),
			Role:              c.PostForm("role"),
			Location:          c.PostForm("location"),
			AboutMe:           c.PostForm("aboutMe"),
			ExperienceSummary: c.PostForm("experienceSummary"),
			Skills:            profiles.SplitSkills(c.PostForm("skills")),
			Tier:              profiles.Tier(c.PostForm("tier")),
		}
	}

	file, err := readAttachment(c, fileField, maxFile, allowed...)
	if err != nil {
		return req, nil, err
	}
	return req, file, nil
}

// parseMultipart bounds the body size and parses the form.
func parseMultipart(c *gin.Context, maxFile int64) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFile+multipartOverhead)
	if err := c.Request.ParseMultipartForm(maxFile + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFileTooLarge
		}
		return errBadBody
	}
	return nil
}

// readAttachment returns the uploaded file in field, or nil when absent.
// The detected type must be one of allowed.
func readAttachment(c *gin.Context, field string, maxFile int64, allowed ...string) (*profiles.Attachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, errFileTooLarge
		}
		return nil, nil
	}
	if header.Size > maxFile {
		return nil, errFileTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFile+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if int64(len(data)) > maxFile {
		return nil, errFileTooLarge
	}

	mime := extract.DetectMimeType(header.Header.Get("Content-Type"), header.Filename, data)
	ok := false
	for _, a := range allowed {
		if mime == a {
			ok = true
			break
		}
	}
	if !ok {
		return nil, errUnsupportedFile
	}
	return &profiles.Attachment{FileName: header.Filename, ContentType: mime, Data: data}, nil
}
