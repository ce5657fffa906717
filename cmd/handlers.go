package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func (svc *serviceContext) searchHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	s := searchContext{}
	s.init(svc, &cl)

	cl.logRequest()
	resp := s.handleSearchRequest(c)
	cl.logResponse(resp)

	if resp.err != nil {
		// one human-readable message; previously displayed rows are gone
		resp.data = SearchResult{
			StatusCode:    resp.status,
			StatusMessage: resp.err.Error(),
			Records:       []ManuscriptRecord{},
		}
	}

	c.JSON(resp.status, resp.data)
}

func (svc *serviceContext) exportHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	s := searchContext{}
	s.init(svc, &cl)

	cl.logRequest()
	resp := s.handleExportRequest(c)
	cl.logResponse(resp)

	// success writes the csv payload itself; only errors reach here
	if resp.err != nil {
		c.String(resp.status, resp.err.Error())
	}
}

func (svc *serviceContext) facetValuesHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	s := searchContext{}
	s.init(svc, &cl)

	cl.logRequest()
	resp := s.handleFacetValuesRequest(c)
	cl.logResponse(resp)

	if resp.err != nil {
		resp.data = FacetValuesResult{StatusCode: resp.status, StatusMessage: resp.err.Error()}
	}

	c.JSON(resp.status, resp.data)
}

func (svc *serviceContext) commitHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	cl.logRequest()

	var req CommitRequest

	if err := c.BindJSON(&req); err != nil {
		resp := searchResponse{status: http.StatusBadRequest, err: err}
		cl.logResponse(resp)
		c.JSON(resp.status, CommitResult{StatusCode: resp.status, StatusMessage: err.Error()})
		return
	}

	state := commitState(req.Committed, req.Pending, req.Action)

	result := CommitResult{
		StatusCode: http.StatusOK,
		State:      state,
		URL:        encodeState(state),
	}

	cl.logResponse(searchResponse{status: http.StatusOK})
	c.JSON(http.StatusOK, result)
}

func (svc *serviceContext) optionsHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	c.JSON(http.StatusOK, cl.localizedServiceOptions(svc))
}

func (svc *serviceContext) ignoreHandler(c *gin.Context) {
}

func (svc *serviceContext) versionHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	c.JSON(http.StatusOK, svc.version)
}

func (svc *serviceContext) healthCheckHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(svc, c)

	s := searchContext{}
	s.init(svc, &cl)

	ping := s.handlePingRequest()

	// build response

	internalServiceError := false

	type hcResp struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message,omitempty"`
	}

	hcElastic := hcResp{Healthy: true}
	if ping.err != nil {
		internalServiceError = true
		hcElastic = hcResp{Healthy: false, Message: ping.err.Error()}
	}

	hcMap := make(map[string]hcResp)
	hcMap["elasticsearch"] = hcElastic

	hcStatus := http.StatusOK
	if internalServiceError == true {
		hcStatus = http.StatusInternalServerError
	}

	c.JSON(hcStatus, hcMap)
}

func getBearerToken(authorization string) (string, error) {
	components := strings.Split(strings.Join(strings.Fields(authorization), " "), " ")

	// must have two components, the first of which is "Bearer", and the second a non-empty token
	if len(components) != 2 || components[0] != "Bearer" || components[1] == "" {
		return "", fmt.Errorf("invalid Authorization header: [%s]", authorization)
	}

	token := components[1]

	if token == "undefined" {
		return "", errors.New("bearer token is undefined")
	}

	return token, nil
}

func (svc *serviceContext) authenticateHandler(c *gin.Context) {
	// auth is optional; without a configured key the api is open
	if svc.config.Service.JWTKey == "" {
		return
	}

	token, err := getBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		log.Printf("authentication failed: [%s]", err.Error())
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{}

	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok == false {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(svc.config.Service.JWTKey), nil
	})

	if err != nil {
		log.Printf("JWT signature for %s is invalid: %s", token, err.Error())
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set("token", token)
	c.Set("claims", claims)
}
