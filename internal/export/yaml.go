package export

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/omnisales/leadgen-cli/internal/model"
)

// workspaceFile is the on-disk shape of a workspace seed file. Absent
// blocks fall back to DefaultSystemConfig via Merged on read paths.
type workspaceFile struct {
	Name     string `yaml:"name"`
	Division string `yaml:"division"`
	ICP      struct {
		Industries  []string `yaml:"industries"`
		Specialties []string `yaml:"specialties"`
		Locations   []string `yaml:"locations"`
		Countries   []string `yaml:"countries"`
	} `yaml:"icp"`
	Outreach struct {
		DailyLimit  int      `yaml:"daily_limit"`
		SenderName  string   `yaml:"sender_name"`
		SenderEmail string   `yaml:"sender_email"`
		SMTPHost    string   `yaml:"smtp_host"`
		SMTPPort    int      `yaml:"smtp_port"`
		Channels    []string `yaml:"channels"`
		Templates   []struct {
			ID      string `yaml:"id"`
			Name    string `yaml:"name"`
			Subject string `yaml:"subject"`
			Body    string `yaml:"body"`
		} `yaml:"templates"`
	} `yaml:"outreach"`
}

// LoadWorkspaceYAML parses a workspace seed file into a workspace with
// defaults applied underneath the file's explicit values.
func LoadWorkspaceYAML(path string) (*model.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: read workspace file")
	}

	var wf workspaceFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, eris.Wrap(err, "export: parse workspace file")
	}
	if wf.Name == "" {
		return nil, eris.New("export: workspace file has no name")
	}

	cfg := model.SystemConfig{}
	cfg.ICP = model.ICPConfig{
		Industries:  wf.ICP.Industries,
		Specialties: wf.ICP.Specialties,
		Locations:   wf.ICP.Locations,
		Countries:   wf.ICP.Countries,
	}
	cfg.Outreach.DailyLimit = wf.Outreach.DailyLimit
	cfg.Outreach.Email.SenderName = wf.Outreach.SenderName
	cfg.Outreach.Email.SenderEmail = wf.Outreach.SenderEmail
	cfg.Outreach.Email.SMTPHost = wf.Outreach.SMTPHost
	cfg.Outreach.Email.SMTPPort = wf.Outreach.SMTPPort
	for _, ch := range wf.Outreach.Channels {
		cfg.Outreach.ActiveChannels = append(cfg.Outreach.ActiveChannels,
			model.OutreachChannel(strings.ToUpper(ch)))
	}
	for _, tpl := range wf.Outreach.Templates {
		cfg.Outreach.Email.Templates = append(cfg.Outreach.Email.Templates, model.EmailTemplate{
			ID:      tpl.ID,
			Name:    tpl.Name,
			Subject: tpl.Subject,
			Body:    tpl.Body,
		})
	}

	return &model.Workspace{
		Name:     wf.Name,
		Division: wf.Division,
		Config:   cfg.Merged(),
	}, nil
}

// seedFile is the on-disk shape of a lead seed file.
type seedFile struct {
	WorkspaceID string     `yaml:"workspace_id"`
	Leads       []seedLead `yaml:"leads"`
}

type seedLead struct {
	CompanyName string `yaml:"company_name"`
	Website     string `yaml:"website"`
	LinkedinURL string `yaml:"linkedin_url"`
	Industry    string `yaml:"industry"`
	Specialty   string `yaml:"specialty"`
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
	Email       string `yaml:"email"`
}

// LoadSeedYAML parses a lead seed file. The file's workspace_id applies to
// every lead; workspaceID overrides it when non-empty.
func LoadSeedYAML(path, workspaceID string) ([]model.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: read seed file")
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, eris.Wrap(err, "export: parse seed file")
	}

	wsID := seed.WorkspaceID
	if workspaceID != "" {
		wsID = workspaceID
	}
	if wsID == "" {
		return nil, eris.New("export: seed file has no workspace_id and none was given")
	}

	leads := make([]model.Lead, 0, len(seed.Leads))
	for _, s := range seed.Leads {
		if s.CompanyName == "" && s.Website == "" {
			continue
		}
		lead := model.Lead{
			WorkspaceID: wsID,
			CompanyName: s.CompanyName,
			Website:     s.Website,
			LinkedinURL: s.LinkedinURL,
			Industry:    s.Industry,
			Specialty:   s.Specialty,
			City:        s.City,
			Country:     s.Country,
		}
		if s.Email != "" {
			lead.Metadata = &model.Metadata{Email: s.Email, Emails: []string{s.Email}}
		}
		leads = append(leads, lead)
	}

	return leads, nil
}
