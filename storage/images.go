package storage

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrImagesDisabled = errors.New("image storage is not configured")

// ImageStore uploads room photos to Cloudinary with signed requests.
type ImageStore struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	// Endpoint defaults to https://api.cloudinary.com/v1_1
	Endpoint string
	Client   *http.Client
}

func (s *ImageStore) Enabled() bool {
	return s != nil && s.CloudName != "" && s.APIKey != "" && s.APISecret != ""
}

func (s *ImageStore) endpoint(action string) string {
	base := s.Endpoint
	if base == "" {
		base = "https://api.cloudinary.com/v1_1"
	}
	return base + "/" + s.CloudName + "/image/" + action
}

func (s *ImageStore) sign(publicID, timestamp string) string {
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, s.APISecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))
}

func (s *ImageStore) publicID(id string) string {
	if s.Folder != "" {
		return s.Folder + "/" + id
	}
	return id
}

// UploadBase64 uploads a base64 image (data URL prefix optional) and returns
// its secure URL.
func (s *ImageStore) UploadBase64(ctx context.Context, base64ImageSrc, publicID string) (string, error) {
	if !s.Enabled() {
		return "", ErrImagesDisabled
	}
	if base64ImageSrc == "" {
		return "", errors.New("empty base64 image")
	}

	payload := base64ImageSrc
	if i := strings.Index(base64ImageSrc, ","); i != -1 {
		payload = base64ImageSrc[i+1:]
	}

	finalPublicID := s.publicID(publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", s.APIKey)
	form.Add("public_id", finalPublicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", s.sign(finalPublicID, timestamp))

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := s.post(ctx, s.endpoint("upload"), form, &cloudRes); err != nil {
		return "", err
	}
	if cloudRes.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", cloudRes.Error.Message)
	}

	urlOut := cloudRes.SecureURL
	if urlOut == "" {
		urlOut = cloudRes.URL
	}
	if urlOut == "" {
		return "", errors.New("cloudinary: no URL returned")
	}
	return urlOut, nil
}

// Delete removes an uploaded image given its delivery URL.
// URL format: https://res.cloudinary.com/{cloud_name}/image/upload/v{version}/{public_id}.{format}
func (s *ImageStore) Delete(ctx context.Context, imageURL string) error {
	if !s.Enabled() {
		return ErrImagesDisabled
	}
	if !strings.Contains(imageURL, "res.cloudinary.com") {
		return fmt.Errorf("not a cloudinary url: %s", imageURL)
	}
	parts := strings.Split(imageURL, "/")
	lastPart := parts[len(parts)-1]
	finalPublicID := s.publicID(strings.Split(lastPart, ".")[0])
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("public_id", finalPublicID)
	form.Add("api_key", s.APIKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", s.sign(finalPublicID, timestamp))

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := s.post(ctx, s.endpoint("destroy"), form, &deleteRes); err != nil {
		return err
	}
	if deleteRes.Error.Message != "" {
		return fmt.Errorf("cloudinary: %s", deleteRes.Error.Message)
	}
	if deleteRes.Result != "ok" {
		return fmt.Errorf("cloudinary: deletion result %q", deleteRes.Result)
	}
	return nil
}

func (s *ImageStore) post(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary: status %d: %s", res.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
