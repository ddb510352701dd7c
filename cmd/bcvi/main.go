// Command bcvi is the back-channel command proxy's single executable:
// depending on which mutually-exclusive mode flag is given, it acts as
// the workstation listener, the remote client, the SSH wrapper, the
// TERM unpacker, or an installer for the other three.
//
// Flag parsing and mode dispatch follow xs/xs.go's style: one flat
// flag.FlagSet, a custom Usage func, and an early flag.Parse()
// followed by a switch on which mode flag fired.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strconv"

	isatty "github.com/mattn/go-isatty"

	"blitter.com/go/bcvi"
	"blitter.com/go/bcvi/bcviconf"
	"blitter.com/go/bcvi/client"
	"blitter.com/go/bcvi/handlers"
	"blitter.com/go/bcvi/listener"
	"blitter.com/go/bcvi/logger"
	"blitter.com/go/bcvi/sshwrap"
	"blitter.com/go/bcvi/termpack"
)

// Log mirrors xs/xsd's package-level syslog Writer: nil until the
// running mode calls initLogging.
var Log *logger.Writer

func usage() {
	fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0]) // nolint: errcheck
	fmt.Fprintln(os.Stderr, "  bcvi [paths...]                  act as the remote client (default mode)")
	fmt.Fprintln(os.Stderr, "  bcvi --listener                  run the workstation listener")
	fmt.Fprintln(os.Stderr, "  bcvi --wrap-ssh -- <ssh-args>     rewrite and exec ssh with a back-channel tunnel")
	fmt.Fprintln(os.Stderr, "  bcvi --unpack-term                emit shell code to re-export a packed TERM")
	fmt.Fprintln(os.Stderr, "  bcvi --install <hosts...>         install bcvi and aliases on remote hosts")
	fmt.Fprintln(os.Stderr, "  bcvi --add-aliases                add the bcvi alias block to local shell rc files")
	fmt.Fprintln(os.Stderr, "  bcvi --help                       show full documentation")
	flag.PrintDefaults()
}

func main() {
	var (
		helpOpt       bool
		listenerOpt   bool
		installOpt    bool
		addAliasesOpt bool
		unpackTermOpt bool
		wrapSSHOpt    bool
		versionOpt    bool
		noXlateOpt    bool
		reuseAuthOpt  bool
		debugOpt      bool
		port          int
		command       string
		pluginHelp    string
		bindAddress   string
		pathPrefix    string
	)

	flag.BoolVar(&helpOpt, "help", false, "render built-in documentation via pager")
	flag.BoolVar(&helpOpt, "?", false, "alias for --help")
	flag.BoolVar(&listenerOpt, "listener", false, "become the back-channel listener")
	flag.BoolVar(&listenerOpt, "l", false, "alias for --listener")
	flag.BoolVar(&installOpt, "install", false, "copy bcvi and install aliases on the given remote hosts")
	flag.BoolVar(&addAliasesOpt, "add-aliases", false, "edit local shell rc files to add the bcvi alias block")
	flag.BoolVar(&unpackTermOpt, "unpack-term", false, "emit shell code that re-exports variables packed into TERM")
	flag.BoolVar(&wrapSSHOpt, "wrap-ssh", false, "rewrite and exec ssh with a back-channel reverse tunnel")
	flag.BoolVar(&wrapSSHOpt, "s", false, "alias for --wrap-ssh")
	flag.BoolVar(&versionOpt, "version", false, "print client and (if reachable) server version")
	flag.BoolVar(&versionOpt, "v", false, "alias for --version")
	flag.BoolVar(&noXlateOpt, "no-path-xlate", false, "skip absolute-path translation of client arguments")
	flag.BoolVar(&noXlateOpt, "n", false, "alias for --no-path-xlate")
	flag.IntVar(&port, "port", 0, "override the default back-channel `port`")
	flag.IntVar(&port, "p", 0, "alias for --port")
	flag.StringVar(&command, "command", "vi", "back-channel `command` to invoke")
	flag.StringVar(&command, "c", "vi", "alias for --command")
	flag.BoolVar(&reuseAuthOpt, "reuse-auth", false, "on listener start, keep the previous auth key")
	flag.BoolVar(&debugOpt, "debug", false, "enable debug logging to syslog")
	flag.BoolVar(&debugOpt, "d", false, "alias for --debug")
	flag.StringVar(&pluginHelp, "plugin-help", "", "show documentation for a named `plugin`")
	flag.StringVar(&bindAddress, "bind", "127.0.0.1", "listener bind `address`")
	flag.StringVar(&pathPrefix, "path-prefix", "scp-url", "vi/viwait remote path rewrite `strategy`: scp-url or tmp-alias")

	flag.Usage = usage
	flag.Parse()

	switch {
	case helpOpt:
		runHelp()
	case pluginHelp != "":
		runPluginHelp(pluginHelp)
	case listenerOpt:
		runListener(bindAddress, port, reuseAuthOpt, pathPrefix, debugOpt)
	case installOpt:
		runInstall(flag.Args())
	case addAliasesOpt:
		runAddAliases()
	case unpackTermOpt:
		fmt.Print(termpack.UnpackShell(os.Getenv("TERM")))
	case wrapSSHOpt:
		runWrapSSH(flag.Args(), port, debugOpt)
	case versionOpt:
		runVersion()
	default:
		runClient(command, noXlateOpt, port, flag.Args(), debugOpt)
	}
}

// initLogging opens a syslog writer tagged for the calling component
// and gates the stdlib log package's output on dbg, mirroring
// xs.go/xsd.go's own "Log, _ = logger.New(...); if dbg { log.SetOutput(Log)
// } else { log.SetOutput(ioutil.Discard) }" startup sequence: with
// --debug, every log.Printf/Println call in this component is mirrored
// to syslog under tag; without it, they're silently discarded.
func initLogging(facility logger.Priority, tag string, dbg bool) *logger.Writer {
	w, err := logger.New(facility|logger.LOG_DEBUG|logger.LOG_NOTICE|logger.LOG_ERR, tag)
	if err != nil || !dbg {
		log.SetOutput(ioutil.Discard)
	} else {
		log.SetOutput(w)
	}
	return w
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("bcvi: cannot determine home directory: %v", err)
	}
	return home
}

func openStore() *bcviconf.Store {
	store, err := bcviconf.NewStore(homeDir())
	if err != nil {
		log.Fatalf("bcvi: cannot open config store: %v", err)
	}
	return store
}

// resolvePrefixer picks the vi/viwait remote path rewrite strategy
// named by --path-prefix: the documented scp:// form (default) or the
// source tool's /tmp/<alias>/... local-mount convention.
func resolvePrefixer(name string) handlers.PathPrefixer {
	if name == "tmp-alias" {
		return handlers.TmpAliasPrefixer{}
	}
	return handlers.ScpURLPrefixer{}
}

// runListener implements --listener: build the handler registry,
// start syslog, and run the accept loop until a fatal error.
func runListener(bindAddress string, port int, reuseAuth bool, pathPrefix string, dbg bool) {
	Log = initLogging(logger.LOG_DAEMON, "bcvi-listener", dbg)

	prefixer := resolvePrefixer(pathPrefix)
	reg := listener.NewRegistry()
	reg.Register(&handlers.ViHandler{Prefixer: prefixer})
	reg.Register(&handlers.ViWaitHandler{ViHandler: handlers.ViHandler{Prefixer: prefixer}})
	reg.Register(&handlers.ScpdHandler{})
	reg.Register(&handlers.CommandsPodHandler{})

	opts := listener.Options{
		BindAddress: bindAddress,
		Port:        port,
		ReuseAuth:   reuseAuth,
		Registry:    reg,
		Store:       openStore(),
		Log:         log.Printf,
	}
	if err := listener.Start(opts); err != nil {
		log.Fatalf("bcvi-listener: %v", err)
	}
}

// runClient implements the default mode: load BCVI_CONF, send one
// request, interpret the response.
func runClient(command string, noXlate bool, port int, paths []string, dbg bool) {
	Log = initLogging(logger.LOG_USER, "bcvi", dbg)

	raw := os.Getenv("BCVI_CONF")
	if raw == "" {
		fmt.Fprintln(os.Stderr, "bcvi: BCVI_CONF is not set; not running inside a bcvi-wrapped SSH session")
		os.Exit(1)
	}
	conf, err := client.ParseConf(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bcvi: %v\n", err) // nolint: errcheck
		os.Exit(1)
	}
	if port != 0 {
		conf.Port = port
	}

	log.Printf("bcvi: sending %q to %s:%d for host-alias %q", command, conf.GatewayAddress, conf.Port, conf.HostAlias)

	res, err := client.Run(client.Options{
		Conf:        conf,
		Command:     command,
		NoPathXlate: noXlate,
		Paths:       paths,
	})
	if err != nil {
		log.Printf("bcvi: %q failed: %v", command, err)
		fmt.Fprintf(os.Stderr, "bcvi: %v\n", err) // nolint: errcheck
		os.Exit(res.ExitCode)
	}
	if len(res.Body) > 0 {
		os.Stdout.Write(res.Body) // nolint: errcheck
	}
	os.Exit(res.ExitCode)
}

// runVersion implements --version: print the client's own version,
// and the listener's too when BCVI_CONF makes it reachable.
func runVersion() {
	fmt.Printf("bcvi client %s\n", bcvi.Version)
	raw := os.Getenv("BCVI_CONF")
	if raw == "" {
		return
	}
	conf, err := client.ParseConf(raw)
	if err != nil {
		return
	}
	res, err := client.Run(client.Options{Conf: conf, VersionOnly: true})
	if err != nil {
		return
	}
	fmt.Printf("bcvi listener %s\n", res.ServerVersion)
}

// runWrapSSH implements --wrap-ssh: rewrite the ssh argument vector,
// pack TERM, and exec the real ssh(1).
func runWrapSSH(args []string, portOverride int, dbg bool) {
	Log = initLogging(logger.LOG_USER, "bcvi-sshwrap", dbg)

	store := openStore()

	remotePort := portOverride
	if remotePort == 0 {
		remotePort = bcvi.DefaultPort(os.Getuid())
	}
	localPort := bcvi.DefaultPort(os.Getuid())
	if p, ok := store.ReadPort(); ok {
		if n, err := strconv.Atoi(p); err == nil {
			localPort = n
		}
	}

	result := sshwrap.Rewrite(args, sshwrap.Config{RemotePort: remotePort, LocalPort: localPort})
	if result.Warning != "" {
		log.Print(result.Warning)
		fmt.Fprintln(os.Stderr, result.Warning)
	}

	authKey, _ := store.ReadKey()
	if result.Alias != "" {
		conf := fmt.Sprintf("%s:localhost:%d:%s", result.Alias, remotePort, authKey)
		os.Setenv("TERM", termpack.Pack(os.Getenv("TERM"), conf)) // nolint: errcheck
	}

	sshBin, err := exec.LookPath("ssh")
	if err != nil {
		log.Fatalf("bcvi: cannot locate ssh: %v", err)
	}
	argv := append([]string{"ssh"}, result.Args...)
	log.Printf("bcvi-sshwrap: exec %s %v", sshBin, argv[1:])
	if err := syscallExec(sshBin, argv, os.Environ()); err != nil {
		log.Fatalf("bcvi: exec ssh: %v", err)
	}
}

// shouldPage reports whether --help output should be piped through a
// pager rather than dumped raw: only when stdout is a terminal.
func shouldPage() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
