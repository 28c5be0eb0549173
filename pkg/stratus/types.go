package stratus

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Kind identifies a resource category in the project → package →
// assembly → attachment tree.
type Kind string

const (
	KindProject            Kind = "project"
	KindPackage            Kind = "package"
	KindAssembly           Kind = "assembly"
	KindPackageAttachment  Kind = "package_attachment"
	KindAssemblyAttachment Kind = "assembly_attachment"
)

// Record is implemented by every API resource. Identity is the
// server-assigned id; Name is what substring filters match against.
type Record interface {
	RecordID() string
	RecordName() string
}

// Project represents one project record.
type Project struct {
	ID   string `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (p Project) RecordID() string   { return p.ID }
func (p Project) RecordName() string { return p.Name }

// UnmarshalJSON captures unknown response keys into Extra.
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project

	var a alias

	err := json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	*p = Project(a)
	p.Extra = extraFields(data, reflect.TypeOf(a))

	return nil
}

// Package represents one package record with its editable properties.
type Package struct {
	ID                       string `json:"id"                                 yaml:"id"`
	Name                     string `json:"name,omitempty"                     yaml:"name,omitempty"`
	Description              string `json:"description,omitempty"              yaml:"description,omitempty"`
	Number                   string `json:"number,omitempty"                   yaml:"number,omitempty"`
	CategoryID               string `json:"categoryId,omitempty"               yaml:"categoryId,omitempty"`
	HoursEstimatedField      int    `json:"hoursEstimatedField,omitempty"      yaml:"hoursEstimatedField,omitempty"`
	HoursEstimatedOffice     int    `json:"hoursEstimatedOffice,omitempty"     yaml:"hoursEstimatedOffice,omitempty"`
	HoursEstimatedPurchasing int    `json:"hoursEstimatedPurchasing,omitempty" yaml:"hoursEstimatedPurchasing,omitempty"`
	HoursEstimatedShop       int    `json:"hoursEstimatedShop,omitempty"       yaml:"hoursEstimatedShop,omitempty"`
	OfficeDuration           int    `json:"officeDuration,omitempty"           yaml:"officeDuration,omitempty"`
	PurchasingDuration       int    `json:"purchasingDuration,omitempty"       yaml:"purchasingDuration,omitempty"`
	ShopDuration             int    `json:"shopDuration,omitempty"             yaml:"shopDuration,omitempty"`
	InstalledDT              string `json:"installedDT,omitempty"              yaml:"installedDT,omitempty"`
	OfficeStartDT            string `json:"officeStartDT,omitempty"            yaml:"officeStartDT,omitempty"`
	PurchasingStartDT        string `json:"purchasingStartDT,omitempty"        yaml:"purchasingStartDT,omitempty"`
	RequiredDT               string `json:"requiredDT,omitempty"               yaml:"requiredDT,omitempty"`
	StartDT                  string `json:"startDT,omitempty"                  yaml:"startDT,omitempty"`
	Status                   int    `json:"status,omitempty"                   yaml:"status,omitempty"`

	// AssemblyCount is computed client-side, never sent by the API.
	AssemblyCount int `json:"-" yaml:"assemblyCount,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (p Package) RecordID() string   { return p.ID }
func (p Package) RecordName() string { return p.Name }

// UnmarshalJSON captures unknown response keys into Extra.
func (p *Package) UnmarshalJSON(data []byte) error {
	type alias Package

	var a alias

	err := json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	*p = Package(a)
	p.Extra = extraFields(data, reflect.TypeOf(a))

	return nil
}

// Assembly represents one assembly record.
type Assembly struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name,omitempty"        yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (a Assembly) RecordID() string   { return a.ID }
func (a Assembly) RecordName() string { return a.Name }

// UnmarshalJSON captures unknown response keys into Extra.
func (a *Assembly) UnmarshalJSON(data []byte) error {
	type alias Assembly

	var aa alias

	err := json.Unmarshal(data, &aa)
	if err != nil {
		return err
	}

	*a = Assembly(aa)
	a.Extra = extraFields(data, reflect.TypeOf(aa))

	return nil
}

// Attachment represents one file attached to a package or assembly.
type Attachment struct {
	ID        string `json:"id"                  yaml:"id"`
	FileName  string `json:"fileName,omitempty"  yaml:"fileName,omitempty"`
	CreatedDT string `json:"createdDT,omitempty" yaml:"createdDT,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (a Attachment) RecordID() string   { return a.ID }
func (a Attachment) RecordName() string { return a.FileName }

// UnmarshalJSON captures unknown response keys into Extra.
func (a *Attachment) UnmarshalJSON(data []byte) error {
	type alias Attachment

	var aa alias

	err := json.Unmarshal(data, &aa)
	if err != nil {
		return err
	}

	*a = Attachment(aa)
	a.Extra = extraFields(data, reflect.TypeOf(aa))

	return nil
}

// User status codes as reported by the API.
const (
	UserStatusActive = 1
)

// User represents one user record.
type User struct {
	ID        string `json:"id"                  yaml:"id"`
	FirstName string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"  yaml:"lastName,omitempty"`
	Email     string `json:"email,omitempty"     yaml:"email,omitempty"`
	Status    int    `json:"status,omitempty"    yaml:"status,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (u User) RecordID() string   { return u.ID }
func (u User) RecordName() string { return strings.TrimSpace(u.FirstName + " " + u.LastName) }

// UnmarshalJSON captures unknown response keys into Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User

	var a alias

	err := json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	*u = User(a)
	u.Extra = extraFields(data, reflect.TypeOf(a))

	return nil
}

// ActivityLog represents one activity log entry.
type ActivityLog struct {
	CreatedDT           string `json:"createdDT,omitempty"           yaml:"createdDT,omitempty"`
	CreatedByName       string `json:"createdByName,omitempty"       yaml:"createdByName,omitempty"`
	DivisionName        string `json:"divisionName,omitempty"        yaml:"divisionName,omitempty"`
	Route               string `json:"route,omitempty"               yaml:"route,omitempty"`
	ProjectName         string `json:"projectName,omitempty"         yaml:"projectName,omitempty"`
	ProjectNumber       string `json:"projectNumber,omitempty"       yaml:"projectNumber,omitempty"`
	ProjectColor        string `json:"projectColor,omitempty"        yaml:"projectColor,omitempty"`
	ModelName           string `json:"modelName,omitempty"           yaml:"modelName,omitempty"`
	Reference           string `json:"reference,omitempty"           yaml:"reference,omitempty"`
	ReferenceName       string `json:"referenceName,omitempty"       yaml:"referenceName,omitempty"`
	Action              string `json:"action,omitempty"              yaml:"action,omitempty"`
	ActionName          string `json:"actionName,omitempty"          yaml:"actionName,omitempty"`
	Name                string `json:"name,omitempty"                yaml:"name,omitempty"`
	Value               string `json:"value,omitempty"               yaml:"value,omitempty"`
	TrackingStatusName  string `json:"trackingStatusName,omitempty"  yaml:"trackingStatusName,omitempty"`
	TrackingStatusColor string `json:"trackingStatusColor,omitempty" yaml:"trackingStatusColor,omitempty"`
	StationName         string `json:"stationName,omitempty"         yaml:"stationName,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// UnmarshalJSON captures unknown response keys into Extra.
func (l *ActivityLog) UnmarshalJSON(data []byte) error {
	type alias ActivityLog

	var a alias

	err := json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	*l = ActivityLog(a)
	l.Extra = extraFields(data, reflect.TypeOf(a))

	return nil
}

// Container represents one container record.
type Container struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name,omitempty"        yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (c Container) RecordID() string   { return c.ID }
func (c Container) RecordName() string { return c.Name }

// UnmarshalJSON captures unknown response keys into Extra.
func (c *Container) UnmarshalJSON(data []byte) error {
	type alias Container

	var a alias

	err := json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	*c = Container(a)
	c.Extra = extraFields(data, reflect.TypeOf(a))

	return nil
}

// TrackingStatus represents one company tracking status.
type TrackingStatus struct {
	ID               string `json:"id"                         yaml:"id"`
	Name             string `json:"name,omitempty"             yaml:"name,omitempty"`
	Description      string `json:"description,omitempty"      yaml:"description,omitempty"`
	Color            string `json:"color,omitempty"            yaml:"color,omitempty"`
	SequenceNumber   int    `json:"sequenceNumber,omitempty"   yaml:"sequenceNumber,omitempty"`
	CanAddToAssembly bool   `json:"canAddToAssembly,omitempty" yaml:"canAddToAssembly,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

func (s TrackingStatus) RecordID() string   { return s.ID }
func (s TrackingStatus) RecordName() string { return s.Name }

// UnmarshalJSON captures unknown response keys into Extra.
func (s *TrackingStatus) UnmarshalJSON(data []byte) error {
	type alias TrackingStatus

	var a alias

	err := json.Unmarshal(data, &a)
	if err != nil {
		return err
	}

	*s = TrackingStatus(a)
	s.Extra = extraFields(data, reflect.TypeOf(a))

	return nil
}

// HealthField is one key/value row of a health report.
type HealthField struct {
	Key   string `json:"key"   yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// HealthReport normalizes the two shapes the health endpoint returns: a
// flat object becomes ordered Fields, an array of heterogeneous objects
// becomes Rows with Columns taken from the first element.
type HealthReport struct {
	Fields  []HealthField       `json:"fields,omitempty"  yaml:"fields,omitempty"`
	Columns []string            `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty"    yaml:"rows,omitempty"`
}

// extraFields returns the response keys not covered by the json tags of
// typ, or nil when every key is known.
func extraFields(data []byte, typ reflect.Type) map[string]json.RawMessage {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil
	}

	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("json")

		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			delete(raw, name)
		}
	}

	if len(raw) == 0 {
		return nil
	}

	return raw
}
