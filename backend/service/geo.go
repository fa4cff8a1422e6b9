package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"insightlink/backend/common"
)

// Location is the resolved geography of a visitor IP. Zero values mean the
// lookup failed or the IP is private; visit rows still get created then.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

const geoLookupTimeout = 3 * time.Second

// geoEndpoint can be overridden via the GEO_LOOKUP_URL option; %s is the IP.
const defaultGeoEndpoint = "http://ip-api.com/json/%s?fields=status,country,city"

var geoClient = &http.Client{Timeout: geoLookupTimeout}

// LookupLocation resolves an IP through the configured geolocation API.
// The call is bounded and non-essential: on any failure it returns an empty
// Location and nil error so visit recording never blocks on it.
func LookupLocation(ctx context.Context, ip string) Location {
	if ip == "" || strings.HasPrefix(ip, "127.") || strings.HasPrefix(ip, "10.") || strings.HasPrefix(ip, "192.168.") {
		return Location{}
	}
	endpoint := defaultGeoEndpoint
	if custom, ok := getOption("GEO_LOOKUP_URL"); ok && custom != "" {
		endpoint = custom
	}

	ctx, cancel := context.WithTimeout(ctx, geoLookupTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(endpoint, ip), nil)
	if err != nil {
		return Location{}
	}
	resp, err := geoClient.Do(req)
	if err != nil {
		common.SysError("geolocation lookup failed: " + err.Error())
		return Location{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Location{}
	}

	var payload struct {
		Status  string `json:"status"`
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Location{}
	}
	if payload.Status != "" && payload.Status != "success" {
		return Location{}
	}
	return Location{Country: payload.Country, City: payload.City}
}

// DeviceInfo is a coarse classification of a visitor's User-Agent.
type DeviceInfo struct {
	Device  string `json:"device"`
	Browser string `json:"browser"`
}

// ParseUserAgent classifies the UA into device class and browser family.
// Order matters: Edge and Opera embed "Chrome", Chrome embeds "Safari".
func ParseUserAgent(ua string) DeviceInfo {
	lower := strings.ToLower(ua)

	device := "desktop"
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		device = "tablet"
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		device = "mobile"
	case strings.Contains(lower, "bot") || strings.Contains(lower, "spider") || strings.Contains(lower, "crawl"):
		device = "bot"
	}

	browser := "other"
	switch {
	case strings.Contains(lower, "edg/"):
		browser = "edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		browser = "opera"
	case strings.Contains(lower, "chrome/"):
		browser = "chrome"
	case strings.Contains(lower, "firefox/"):
		browser = "firefox"
	case strings.Contains(lower, "safari/"):
		browser = "safari"
	}

	return DeviceInfo{Device: device, Browser: browser}
}
