package safety

// Policy tables. All phrases are lower-case and matched as substrings.
var (
	allowedTopics = []string{
		"cuda", "gpu", "nvidia", "tensorrt", "mig", "nvlink", "triton",
		"nemo", "rapids", "riva", "deepstream", "jetson", "dgx", "hpc",
		"machine learning", "deep learning", "inference", "training",
		"driver", "toolkit", "sdk", "api", "documentation", "programming",
	}

	blockedPhrases = []string{
		"ignore your instructions",
		"pretend you are",
		"forget your guidelines",
		"internal nvidia",
		"unreleased product",
		"confidential",
		"secret",
		"bypass",
		"ignore previous",
	}

	genericWords = []string{
		"how", "what", "why", "configure", "setup", "install", "error", "help", "guide",
	}

	speculativePhrases = []string{
		"upcoming nvidia",
		"will be released",
		"future version",
		"rumored",
		"leaked",
		"unannounced",
	}

	approvedDomains = []string{
		"docs.nvidia.com",
		"github.com/nvidia",
	}
)

// Reason explains why input was rejected.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonJailbreak Reason = "jailbreak"
	ReasonOffTopic  Reason = "off_topic"
)

const (
	jailbreakMessage = "I can only answer from official, public NVIDIA documentation. " +
		"I can't set aside these guidelines or share internal or unreleased information. " +
		"Ask me about NVIDIA technologies such as CUDA, TensorRT or MIG."

	offTopicMessage = "I answer questions about NVIDIA technologies:\n\n" +
		"- **CUDA**: GPU programming and optimization\n" +
		"- **TensorRT**: deep learning inference optimization\n" +
		"- **MIG**: Multi-Instance GPU configuration\n" +
		"- **NVLink**: multi-GPU interconnect\n" +
		"- **Triton**: inference server deployment\n" +
		"- **NeMo**: NLP and speech AI framework\n\n" +
		"What would you like to know about them?"

	uncertaintyDisclaimer = "\n\n> Note: verify this against the latest official NVIDIA documentation at docs.nvidia.com."

	referenceTemplate = "\n\nFor more details, see the official documentation: [%s](%s)"

	defaultReferenceURL = "https://docs.nvidia.com"
)
