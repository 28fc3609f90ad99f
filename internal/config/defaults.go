package config

const (
	defaultDICOMDir           = "dicom"
	defaultBIDSDir            = "bids"
	defaultLogDir             = "~/.local/share/bidsprep/logs"
	defaultTranslatorFilename = "Protocol_Translator.json"
	defaultConverterBinary    = "dcm2niix"
	defaultFilenameTemplate   = "%n--%p--%q--%s"
	defaultConverterTimeout   = 3600
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DICOMDir: defaultDICOMDir,
			BIDSDir:  defaultBIDSDir,
			LogDir:   defaultLogDir,
		},
		Translator: Translator{
			Filename: defaultTranslatorFilename,
		},
		Converter: Converter{
			Binary:           defaultConverterBinary,
			FilenameTemplate: defaultFilenameTemplate,
			TimeoutSeconds:   defaultConverterTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
