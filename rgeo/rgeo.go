// Package rgeo wraps the offline reverse geocoder behind a process-wide,
// initialize-once instance. Loading the datasets takes seconds and real
// memory, so nothing loads until Init is called.
package rgeo

import (
	"fmt"
	"slices"
	"sort"

	"github.com/paulmach/orb"
	"github.com/rotblauer/orthod/common"
	srgeo "github.com/sams96/rgeo"
)

type ReverseGeocoder interface {
	GetLocation(pt orb.Point) (srgeo.Location, error)
}

// rR is the type of our wrapped rgeo.Rgeo instance, which implements the ReverseGeocoder interface.
type rR srgeo.Rgeo

// r is the instance of our wrapped rgeo.Rgeo instance.
var r *rR

func (rr *rR) GetLocation(pt orb.Point) (srgeo.Location, error) {
	return (*srgeo.Rgeo)(rr).ReverseGeocode(pt)
}

// R gets the process-wide ReverseGeocoder.
// It returns nil before Init; callers fall back to coordinate naming.
func R() ReverseGeocoder {
	if r == nil {
		return nil
	}
	return r
}

var (
	Cities10      = srgeo.Cities10
	Countries10   = srgeo.Countries10
	Provinces10   = srgeo.Provinces10
	US_Counties10 = srgeo.US_Counties10
)

// datasets are the datasets that the reverse geocoder will use.
var datasets = []func() []byte{
	Cities10,
	Countries10,
	Provinces10,
	US_Counties10,
}

var DatasetNamesStable = []string{}

func init() {
	for _, d := range datasets {
		DatasetNamesStable = append(DatasetNamesStable, common.ReflectFunctionName(d))
	}
	sort.Slice(DatasetNamesStable, func(i, j int) bool {
		return DatasetNamesStable[i] < DatasetNamesStable[j]
	})
}

var ErrAlreadyInitialized = fmt.Errorf("rgeo already initialized")

func Init() error {
	if r != nil {
		return ErrAlreadyInitialized
	}

	r1, err := srgeo.New(datasets...)
	if err != nil {
		return err
	}
	r = (*rR)(r1)

	// Assert that exported DatasetNamesStable matches actual loaded.
	names := r1.DatasetNames()
	if !slices.Equal(DatasetNamesStable, names) {
		return fmt.Errorf("DatasetNamesStable does not match actual")
	}
	return nil
}
