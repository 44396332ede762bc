package bundle

import (
	"encoding/json"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	"github.com/cloudfoundry/bosh-utils/fileutil"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	mapstruc "github.com/mitchellh/mapstructure"
)

// SourceOptionsSlice is used for unmarshalling different bundle source types
type SourceOptionsSlice []SourceOptions

type SourceOptions interface {
	sourceOptionsInterface()
}

type DirectorySourceOptions struct {
	Path string
}

func (o DirectorySourceOptions) sourceOptionsInterface() {}

type ArchiveSourceOptions struct {
	Path            string
	PathInArchive   string
	StripComponents int
}

func (o ArchiveSourceOptions) sourceOptionsInterface() {}

func (s *SourceOptionsSlice) UnmarshalJSON(data []byte) error {
	var maps []map[string]interface{}

	err := json.Unmarshal(data, &maps)
	if err != nil {
		return bosherr.WrapError(err, "Unmarshalling sources")
	}

	for _, m := range maps {
		optType, ok := m["Type"]
		if !ok {
			return bosherr.Error("Missing source type")
		}

		var opts SourceOptions

		switch optType {
		case "Directory":
			var o DirectorySourceOptions
			err, opts = mapstruc.Decode(m, &o), o

		case "Archive":
			var o ArchiveSourceOptions
			err, opts = mapstruc.Decode(m, &o), o

		default:
			err = bosherr.Errorf("Unknown source type '%s'", optType)
		}

		if err != nil {
			return bosherr.WrapErrorf(err, "Unmarshalling source type '%s'", optType)
		}

		*s = append(*s, opts)
	}

	return nil
}

type SourceFactory struct {
	fs         boshsys.FileSystem
	compressor fileutil.Compressor
	logger     boshlog.Logger
}

func NewSourceFactory(fs boshsys.FileSystem, compressor fileutil.Compressor, logger boshlog.Logger) SourceFactory {
	return SourceFactory{fs: fs, compressor: compressor, logger: logger}
}

// New builds one resolver over every configured source, consulted in order.
func (f SourceFactory) New(sources SourceOptionsSlice) (*MultiResolver, error) {
	if len(sources) == 0 {
		return nil, bosherr.Error("No bundle sources configured")
	}

	var resolvers []Resolver

	for _, opts := range sources {
		switch typedOpts := opts.(type) {
		case DirectorySourceOptions:
			if typedOpts.Path == "" {
				return nil, bosherr.Error("Directory source requires a path")
			}
			resolvers = append(resolvers, NewDirectoryResolver(typedOpts.Path, f.fs, f.logger))

		case ArchiveSourceOptions:
			if typedOpts.Path == "" {
				return nil, bosherr.Error("Archive source requires a path")
			}
			compressorOpts := fileutil.CompressorOptions{
				PathInArchive:   typedOpts.PathInArchive,
				StripComponents: typedOpts.StripComponents,
			}
			resolvers = append(resolvers, NewArchiveResolver(typedOpts.Path, compressorOpts, f.fs, f.compressor, f.logger))

		default:
			return nil, bosherr.Errorf("Unsupported bundle source %#v", opts)
		}
	}

	return NewMultiResolver(resolvers, f.logger), nil
}
