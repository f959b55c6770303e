package testsCommon

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// WriteRequest is a write call received by the InfluxMock
type WriteRequest struct {
	Org           string
	Bucket        string
	Precision     string
	Authorization string
	Line          string
}

// InfluxMock is an HTTP server answering the InfluxDB 2 write endpoint
type InfluxMock struct {
	*httptest.Server
	mut      sync.Mutex
	requests []WriteRequest
	token    string
}

// NewInfluxMock starts a fake InfluxDB accepting writes authorized with the provided token
func NewInfluxMock(token string) *InfluxMock {
	gin.SetMode(gin.TestMode)

	mock := &InfluxMock{
		token: token,
	}

	router := gin.New()
	router.POST("/api/v2/write", mock.handleWrite)
	mock.Server = httptest.NewServer(router)

	return mock
}

func (mock *InfluxMock) handleWrite(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid", "message": err.Error()})
		return
	}

	request := WriteRequest{
		Org:           c.Query("org"),
		Bucket:        c.Query("bucket"),
		Precision:     c.Query("precision"),
		Authorization: c.GetHeader("Authorization"),
		Line:          strings.TrimRight(string(body), "\n"),
	}

	if request.Authorization != "Token "+mock.token {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "unauthorized access"})
		return
	}
	if len(request.Bucket) == 0 || len(strings.TrimSpace(request.Line)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid", "message": "missing bucket or empty body"})
		return
	}

	mock.mut.Lock()
	mock.requests = append(mock.requests, request)
	mock.mut.Unlock()

	c.Status(http.StatusNoContent)
}

// Requests returns a copy of the accepted write requests
func (mock *InfluxMock) Requests() []WriteRequest {
	mock.mut.Lock()
	defer mock.mut.Unlock()

	return append([]WriteRequest(nil), mock.requests...)
}

// SpeakerMock is an HTTP server answering the speaker's ifconfig status page
type SpeakerMock struct {
	*httptest.Server
	mut        sync.Mutex
	numCalls   int
	statusCode int
	body       string
}

// NewSpeakerMock starts a fake speaker answering /status/ifconfig with the provided status code and body
func NewSpeakerMock(statusCode int, body string) *SpeakerMock {
	gin.SetMode(gin.TestMode)

	mock := &SpeakerMock{
		statusCode: statusCode,
		body:       body,
	}

	router := gin.New()
	router.GET("/status/ifconfig", mock.handleStatus)
	mock.Server = httptest.NewServer(router)

	return mock
}

func (mock *SpeakerMock) handleStatus(c *gin.Context) {
	mock.mut.Lock()
	mock.numCalls++
	mock.mut.Unlock()

	c.Data(mock.statusCode, "text/xml; charset=utf-8", []byte(mock.body))
}

// StatusURL returns the address of the fake status page
func (mock *SpeakerMock) StatusURL() string {
	return mock.URL + "/status/ifconfig"
}

// NumCalls returns how many times the status page was requested
func (mock *SpeakerMock) NumCalls() int {
	mock.mut.Lock()
	defer mock.mut.Unlock()

	return mock.numCalls
}
