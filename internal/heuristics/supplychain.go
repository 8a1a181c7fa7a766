package heuristics

import (
	"encoding/json"
	"path/filepath"
	"regexp"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

const (
	InstallScriptFindingID   = "SUPPLY_CHAIN_INSTALL_SCRIPT"
	RemoteFetchFindingID     = "SUPPLY_CHAIN_REMOTE_FETCH"
	RemoteExecFindingID      = "SUPPLY_CHAIN_REMOTE_EXEC"
	PermissionChangeFindingID = "SUPPLY_CHAIN_PERMISSION_CHANGE"
)

var installPhaseScript = regexp.MustCompile(`^(?:pre|post)?install$|^prepare$|^prepublish$|^postpublish$|^prepack$|^postpack$`)

var remoteFetcher = regexp.MustCompile(`(?i)\b(curl|wget|invoke-webrequest|powershell)\b`)

// remotePipedToShell matches a remote fetch piped into a shell interpreter,
// e.g. "curl https://x | bash" or "wget -O- http://y | sh".
var remotePipedToShell = regexp.MustCompile(`(?i)\b(curl|wget|invoke-webrequest|powershell)\b[^|]*\|\s*(sh|bash)\b`)

var permissionChange = regexp.MustCompile(`(?i)\b(chmod|chown)\b`)

type packageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

// PackageScript runs the supply-chain analyzer. It only activates for
// content whose virtual_path basename is package.json and which parses as
// JSON; any other input yields no findings.
func PackageScript(item model.ContentItem) []model.Finding {
	if filepath.Base(item.VirtualPath) != "package.json" {
		return nil
	}

	var pkg packageJSON
	if err := json.Unmarshal([]byte(item.Content), &pkg); err != nil {
		return nil
	}

	var findings []model.Finding
	for name, command := range pkg.Scripts {
		if permissionChange.MatchString(command) {
			findings = append(findings, finding(item, PermissionChangeFindingID, rules.SeverityHigh,
				"npm script \""+name+"\" changes file permissions: "+command))
		}

		if !installPhaseScript.MatchString(name) {
			continue
		}

		findings = append(findings, finding(item, InstallScriptFindingID, rules.SeverityMedium,
			"npm install-phase script \""+name+"\": "+command))

		if remoteFetcher.MatchString(command) {
			findings = append(findings, finding(item, RemoteFetchFindingID, rules.SeverityHigh,
				"npm install-phase script \""+name+"\" fetches a remote resource: "+command))
		}

		if remotePipedToShell.MatchString(command) {
			findings = append(findings, finding(item, RemoteExecFindingID, rules.SeverityCritical,
				"npm install-phase script \""+name+"\" pipes a remote fetch into a shell: "+command))
		}
	}
	return findings
}

func finding(item model.ContentItem, id string, severity rules.Severity, message string) model.Finding {
	return model.Finding{
		RuleID:   id,
		Severity: severity,
		Source:   rules.SourceHeuristic,
		Message:  message,
		File:     item.VirtualPath,
	}
}
