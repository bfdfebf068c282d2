// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

// DataSource describes the input slice a document was computed from.
type DataSource struct {
	TimeRange struct {
		Start string `json:"start,omitempty"`
		End   string `json:"end,omitempty"`
	} `json:"time_range"`
}

// NewDataSource returns nil when the window is open on both ends.
func NewDataSource(w TimeWindow) *DataSource {
	if !w.Active() {
		return nil
	}
	ds := &DataSource{}
	ds.TimeRange.Start = w.RawStart
	ds.TimeRange.End = w.RawEnd
	return ds
}

// Version returns the persistence version string "start-end" with spaces
// replaced by '_' and colons by '-'. Empty when ds is nil.
func (ds *DataSource) Version() string {
	if ds == nil {
		return ""
	}
	v := ds.TimeRange.Start + "-" + ds.TimeRange.End
	out := make([]rune, 0, len(v))
	for _, r := range v {
		switch r {
		case ' ':
			out = append(out, '_')
		case ':':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// CountStatistics is the statistics block of persona and profile documents.
type CountStatistics struct {
	Total int `json:"total"`
}

// PersonaDocument is the persona output document.
type PersonaDocument struct {
	Personas   []UserPersona   `json:"users_personas"`
	Statistics CountStatistics `json:"statistics"`
	DataSource *DataSource     `json:"data_source,omitempty"`
}

// ProfileDocument is the target profile output document.
type ProfileDocument struct {
	Profiles   []TargetProfile `json:"target_profiles"`
	Statistics CountStatistics `json:"statistics"`
	DataSource *DataSource     `json:"data_source,omitempty"`
}

// TaskCatalog is the virtual task input document.
type TaskCatalog struct {
	Tasks []VirtualTask `json:"virtual_tasks"`
}

// RecommendationDocument is the recommendation output document.
type RecommendationDocument struct {
	Recommendations []UserRecommendations    `json:"recommendations"`
	Statistics      RecommendationStatistics `json:"statistics"`
	DataSource      *DataSource              `json:"data_source,omitempty"`
}

// UserRecommendations is the resolved task list of one requester.
type UserRecommendations struct {
	UserID UserKey       `json:"user_id"`
	Tasks  []VirtualTask `json:"recommended_tasks"`
}

// RecommendationStatistics counts users and tasks. OriginalRecommendations
// counts ranked results before unresolved task ids were dropped.
type RecommendationStatistics struct {
	TotalUsers              int `json:"total_users"`
	TotalRecommendations    int `json:"total_recommendations"`
	OriginalRecommendations int `json:"original_recommendations"`
}

// DemandDocument is the recommendation demand output document.
type DemandDocument struct {
	Demands        []TargetDemands  `json:"recommendation_demands"`
	Statistics     DemandStatistics `json:"statistics"`
	GenerationTime string           `json:"generation_time"`
	DataSource     *DataSource      `json:"data_source,omitempty"`
}

// TargetDemands groups the demands generated for one target.
type TargetDemands struct {
	TargetID string   `json:"targetId"`
	Demands  []Demand `json:"demands"`
}

// DemandStatistics counts generated demands and processed targets.
type DemandStatistics struct {
	Total       int `json:"total"`
	TargetCount int `json:"target_count"`
}

// Demand is one synthetic reconnaissance demand. Exactly one of
// (ReqCycle, ReqCycleTimes) or ReqTimes is set. MissionPlanType is an int
// when the label is numeric, otherwise the raw string.
type Demand struct {
	TargetID        string  `json:"targetId"`
	TargetPriority  float64 `json:"targetPriority"`
	TaskType        string  `json:"taskType"`
	ScoutType       string  `json:"scoutType"`
	TaskScene       string  `json:"taskScene"`
	IsPrecise       string  `json:"isPrecise"`
	Resolution      string  `json:"resolution"`
	ReqCycle        *string `json:"reqCycle,omitempty"`
	ReqCycleTimes   *int    `json:"reqCycleTimes,omitempty"`
	ReqTimes        *string `json:"reqTimes,omitempty"`
	TargetType      string  `json:"targetType"`
	TargetCategory  string  `json:"targetCategory"`
	MissionPlanType any     `json:"missionPlanType"`

	MessageType       string  `json:"messageType"`
	MessageID         int     `json:"messageId"`
	OriginatorAddress string  `json:"originatorAddress"`
	CreationTime      string  `json:"creationTime"`
	MessageStatus     int     `json:"messageStatus"`
	ReqCount          int     `json:"reqCount"`
	ReqGround         string  `json:"reqGround"`
	GenerateReqID     string  `json:"generateReqId"`
	ReqOperation      string  `json:"reqOperation"`
	ReqUnit           string  `json:"reqUnit"`
	ReqGroup          string  `json:"reqGroup"`
	ReqName           string  `json:"reqName"`
	ReqStartTime      string  `json:"reqStartTime"`
	ReqEndTime        string  `json:"reqEndTime"`
	TopicName         string  `json:"topicName"`
	TopicID           string  `json:"topicId"`
	TopicLevel        float64 `json:"topicLevel"`
	TargetName        string  `json:"targetName"`
	CountryName       string  `json:"countryName"`
	IsEmcon           string  `json:"isEmcon"`
	CenterLocation    string  `json:"centerLocation"`
	Elevation         string  `json:"elevation"`
	ReqIntervalMax    float64 `json:"reqIntervalMax"`
	ReqIntervalMin    float64 `json:"reqIntervalMin"`
	Speed             float64 `json:"speed"`
	Heading           float64 `json:"heading"`

	WeightScore float64 `json:"weight_score"`
}
