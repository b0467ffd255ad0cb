package interpreter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"insightbeam/types"
)

// The model responds with an <analysis> element, usually surrounded by
// conversational prose. Parsing first isolates that element, then decodes
// it leniently (HTML entities, unescaped ampersands) while still rejecting
// responses that omit required tags.

var errNoAnalysisElement = errors.New("response contains no <analysis> element")

type xmlViewPoint struct {
	Point     *string  `xml:"point"`
	Arguments []string `xml:"arguments>argument"`
}

type xmlAnalysis struct {
	XMLName    xml.Name       `xml:"analysis"`
	Subject    *string        `xml:"subject"`
	ViewPoints []xmlViewPoint `xml:"view-points>view-point"`
}

type xmlCounter struct {
	Original   *string `xml:"original"`
	Other      *string `xml:"other"`
	ArticleURL *string `xml:"article-url"`
}

type xmlCounterAnalysis struct {
	XMLName  xml.Name     `xml:"analysis"`
	Counters []xmlCounter `xml:"counters>counter"`
}

// ParseAnalysis validates a model response against the analysis schema.
// A missing <subject> is a parse error, never defaulted; zero view-points
// is valid.
func ParseAnalysis(response string) (types.Analysis, error) {
	var parsed xmlAnalysis
	if err := decodeAnalysisElement(response, &parsed); err != nil {
		return types.Analysis{}, err
	}

	if parsed.Subject == nil {
		return types.Analysis{}, errors.New("analysis is missing required <subject>")
	}

	viewPoints := make([]types.ViewPoint, 0, len(parsed.ViewPoints))
	for i, vp := range parsed.ViewPoints {
		if vp.Point == nil {
			return types.Analysis{}, fmt.Errorf("view-point %d is missing required <point>", i)
		}
		arguments := vp.Arguments
		if arguments == nil {
			arguments = []string{}
		}
		viewPoints = append(viewPoints, types.ViewPoint{
			Point:     strings.TrimSpace(*vp.Point),
			Arguments: trimAll(arguments),
		})
	}

	return types.Analysis{
		Subject:    strings.TrimSpace(*parsed.Subject),
		ViewPoints: viewPoints,
	}, nil
}

// ParseCounterAnalysis validates a model response against the counters
// schema. The sentinel token is handled by the caller; by the time a
// response reaches here it must be a well-formed counters document.
func ParseCounterAnalysis(response string) (types.CounterAnalysis, error) {
	var parsed xmlCounterAnalysis
	if err := decodeAnalysisElement(response, &parsed); err != nil {
		return types.CounterAnalysis{}, err
	}

	counters := make([]types.Counter, 0, len(parsed.Counters))
	for i, c := range parsed.Counters {
		if c.Original == nil || c.Other == nil || c.ArticleURL == nil {
			return types.CounterAnalysis{}, fmt.Errorf("counter %d is missing a required tag", i)
		}
		counters = append(counters, types.Counter{
			ArticleURL:        strings.TrimSpace(*c.ArticleURL),
			OriginalViewPoint: strings.TrimSpace(*c.Original),
			CounterViewPoint:  strings.TrimSpace(*c.Other),
		})
	}

	return types.CounterAnalysis{Counters: counters}, nil
}

func decodeAnalysisElement(response string, out interface{}) error {
	snippet, err := analysisElement(response)
	if err != nil {
		return err
	}

	decoder := xml.NewDecoder(strings.NewReader(snippet))
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("malformed analysis element: %w", err)
	}
	return nil
}

// analysisElement extracts the <analysis>...</analysis> span, discarding
// any prose the model wrapped around it.
func analysisElement(response string) (string, error) {
	start := strings.Index(response, "<analysis")
	if start < 0 {
		return "", errNoAnalysisElement
	}
	end := strings.LastIndex(response, "</analysis>")
	if end < 0 || end < start {
		return "", errNoAnalysisElement
	}
	return response[start : end+len("</analysis>")], nil
}

func trimAll(values []string) []string {
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	return trimmed
}
