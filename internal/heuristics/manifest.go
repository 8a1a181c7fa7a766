package heuristics

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

const (
	BroadHostPermissionFindingID  = "MANIFEST_BROAD_HOST_PERMISSION"
	DangerousPermissionFindingID  = "MANIFEST_DANGEROUS_PERMISSION"
	RemoteCodeFindingID           = "MANIFEST_REMOTE_CODE_EXECUTION"
	PersistentBackgroundFindingID = "MANIFEST_PERSISTENT_BACKGROUND"
)

// dangerousPermissions are browser-extension manifest permissions the
// analyzer flags on sight; each materially widens the extension's reach
// beyond serving its declared content scripts.
var dangerousPermissions = map[string]bool{
	"debugger":        true,
	"proxy":           true,
	"privacy":         true,
	"management":      true,
	"nativeMessaging": true,
	"webRequest":      true,
	"webRequestBlocking": true,
	"clipboardRead":   true,
	"clipboardWrite":  true,
}

type manifestDoc struct {
	ManifestVersion int      `json:"manifest_version"`
	Permissions     []string `json:"permissions"`
	HostPermissions []string `json:"host_permissions"`
	ContentScripts  []struct {
		Matches []string `json:"matches"`
	} `json:"content_scripts"`
	Background struct {
		ServiceWorker string `json:"service_worker"`
		Persistent    *bool  `json:"persistent"`
		Scripts       []string `json:"scripts"`
	} `json:"background"`
	ContentSecurityPolicy interface{} `json:"content_security_policy"`
}

// Manifest runs the extension-manifest analyzer. It only activates for
// content whose virtual_path basename is manifest.json and which parses.
func Manifest(item model.ContentItem) []model.Finding {
	if filepath.Base(item.VirtualPath) != "manifest.json" {
		return nil
	}

	var doc manifestDoc
	if err := json.Unmarshal([]byte(item.Content), &doc); err != nil {
		return nil
	}

	var findings []model.Finding

	for _, host := range append(doc.HostPermissions, doc.Permissions...) {
		if isBroadHostPattern(host) {
			findings = append(findings, finding(item, BroadHostPermissionFindingID, rules.SeverityHigh,
				"manifest requests broad host access: "+host))
		}
	}

	for _, perm := range doc.Permissions {
		if dangerousPermissions[perm] {
			findings = append(findings, finding(item, DangerousPermissionFindingID, rules.SeverityMedium,
				"manifest declares sensitive permission: "+perm))
		}
	}

	for _, cs := range doc.ContentScripts {
		for _, m := range cs.Matches {
			if isBroadHostPattern(m) {
				findings = append(findings, finding(item, BroadHostPermissionFindingID, rules.SeverityHigh,
					"content script injects into all URLs: "+m))
			}
		}
	}

	if csp, ok := doc.ContentSecurityPolicy.(string); ok && strings.Contains(csp, "unsafe-eval") {
		findings = append(findings, finding(item, RemoteCodeFindingID, rules.SeverityHigh,
			"content_security_policy permits unsafe-eval"))
	}

	if doc.Background.Persistent != nil && *doc.Background.Persistent {
		findings = append(findings, finding(item, PersistentBackgroundFindingID, rules.SeverityMedium,
			"manifest declares a persistent background page"))
	}

	return findings
}

func isBroadHostPattern(pattern string) bool {
	return pattern == "<all_urls>" || strings.HasPrefix(pattern, "*://*/") || pattern == "*://*/*"
}
